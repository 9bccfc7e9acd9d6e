package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"meshguard/internal/domain"
)

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending [mesh-id]",
		Short: "List nodes awaiting approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := wireCtx.Mesh.ListPending(domain.MeshID(args[0]))
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				fmt.Println("No pending nodes.")
				return nil
			}
			for _, n := range nodes {
				fmt.Printf("%s  class=%s  level=%s  via=%s  requested=%s\n",
					n.ID, n.DeviceClass, n.SecurityLevel, n.EnrollmentMode,
					n.RequestedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func approveCmd() *cobra.Command {
	var (
		profile string
		tags    []string
	)
	cmd := &cobra.Command{
		Use:   "approve [mesh-id] [node-id]",
		Short: "Approve a pending node and assign ACL metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParseACLProfile(profile)
			if err != nil {
				return err
			}
			art, err := wireCtx.Mesh.Approve(cmd.Context(), domain.MeshID(args[0]), domain.NodeID(args[1]), actor, p, tags)
			if err != nil {
				return err
			}
			fmt.Printf("Approved %s.\nProfile:   %s\nTags:      %s\nSigned by: %s\n",
				art.NodeID, art.Profile, strings.Join(art.Tags, ","), art.Credential.Algorithm)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "default", "acl profile (default|strict|isolated)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tags for policy matching (repeatable)")
	return cmd
}

func revokeCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "revoke [mesh-id] [node-id]",
		Short: "Revoke an approved node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wireCtx.Mesh.Revoke(cmd.Context(), domain.MeshID(args[0]), domain.NodeID(args[1]), actor, reason); err != nil {
				return err
			}
			fmt.Printf("Revoked %s.\n", args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "revocation reason recorded in the tombstone")
	return cmd
}

func reissueCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "reissue [mesh-id] [node-id]",
		Short: "Issue a one-time re-enrollment token for a revoked node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, signed, err := wireCtx.Mesh.ReissueToken(cmd.Context(), domain.MeshID(args[0]), domain.NodeID(args[1]), actor, ttl)
			if err != nil {
				return err
			}
			fmt.Printf("Reissue token for %s.\nToken:     %s\nAlgorithm: %s\nExpires:   %s\n",
				tok.NodeID, tok.Token, signed.Algorithm, tok.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default 1h)")
	return cmd
}
