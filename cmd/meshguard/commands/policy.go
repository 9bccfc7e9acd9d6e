package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"meshguard/internal/domain"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage ACL policies",
	}
	cmd.AddCommand(policyAddCmd(), policyListCmd())
	return cmd
}

func policyAddCmd() *cobra.Command {
	var (
		source string
		target string
		action string
	)
	cmd := &cobra.Command{
		Use:   "add [mesh-id]",
		Short: "Add a tag-based allow/deny rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := domain.ParseAction(action)
			if err != nil {
				return err
			}
			p, err := wireCtx.Mesh.AddPolicy(cmd.Context(), domain.MeshID(args[0]), actor, source, target, a)
			if err != nil {
				return err
			}
			fmt.Printf("Policy %s: %s -> %s (%s)\n", p.ID, p.SourceTag, p.TargetTag, p.Action)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source tag (* matches any)")
	cmd.Flags().StringVar(&target, "target", "", "target tag (* matches any)")
	cmd.Flags().StringVar(&action, "action", "allow", "allow or deny")
	return cmd
}

func policyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [mesh-id]",
		Short: "List ACL policies in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policies, err := wireCtx.Mesh.Policies(domain.MeshID(args[0]))
			if err != nil {
				return err
			}
			if len(policies) == 0 {
				fmt.Println("No policies; approved nodes fall back to the open-mesh default.")
				return nil
			}
			for _, p := range policies {
				fmt.Printf("%s  %s -> %s  %s  %s\n",
					p.ID, p.SourceTag, p.TargetTag, p.Action, p.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [mesh-id] [source-node] [target-node]",
		Short: "Evaluate access for one node pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wireCtx.Mesh.CheckAccess(domain.MeshID(args[0]), domain.NodeID(args[1]), domain.NodeID(args[2]))
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", d.Action, d.Reason)
			for _, p := range d.Matched {
				fmt.Printf("  matched %s: %s -> %s (%s)\n", p.ID, p.SourceTag, p.TargetTag, p.Action)
			}
			return nil
		},
	}
}
