package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"meshguard/internal/domain"
)

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit [mesh-id]",
		Short: "Print recent audit events for a mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := wireCtx.Ring.Snapshot(domain.MeshID(args[0]))
			if len(entries) == 0 {
				fmt.Println("No audit events in this process.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-22s  actor=%s  %s\n",
					e.Time.Format(time.RFC3339), e.Event, e.Actor, e.Details)
			}
			return nil
		},
	}
}
