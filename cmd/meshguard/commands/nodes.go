package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"meshguard/internal/domain"
)

func nodesCmd() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "nodes [mesh-id]",
		Short: "List all nodes with lifecycle state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := wireCtx.Mesh.ListNodes(domain.MeshID(args[0]), domain.LifecycleState(state))
			if err != nil {
				return err
			}
			fmt.Printf("approved=%d pending=%d revoked=%d\n",
				list.ByStatus[domain.StateApproved],
				list.ByStatus[domain.StatePending],
				list.ByStatus[domain.StateRevoked])
			for _, n := range list.Nodes {
				line := fmt.Sprintf("%s  %s  class=%s", n.NodeID, n.State, n.DeviceClass)
				if len(n.Tags) > 0 {
					line += "  tags=" + strings.Join(n.Tags, ",")
				}
				if n.Reason != "" {
					line += "  reason=" + n.Reason
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "filter by state (pending|approved|revoked)")
	return cmd
}

func nodeConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "node-config [mesh-id] [node-id]",
		Short: "Print a node's policy decision map",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := wireCtx.Mesh.NodeConfig(domain.MeshID(args[0]), domain.NodeID(args[1]))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [mesh-id]",
		Short: "Summarize a mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meshID := domain.MeshID(args[0])
			m, err := wireCtx.Mesh.Mesh(meshID)
			if err != nil {
				return err
			}
			list, err := wireCtx.Mesh.ListNodes(meshID, "")
			if err != nil {
				return err
			}
			policies, err := wireCtx.Mesh.Policies(meshID)
			if err != nil {
				return err
			}
			fmt.Printf("Mesh %s (%s)\nOwner:    %s\nNodes:    %d approved, %d pending, %d revoked\nPolicies: %d\n",
				m.ID, m.Name, m.OwnerID,
				list.ByStatus[domain.StateApproved],
				list.ByStatus[domain.StatePending],
				list.ByStatus[domain.StateRevoked],
				len(policies))
			return nil
		},
	}
}
