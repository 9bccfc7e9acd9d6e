package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"meshguard/internal/domain"
	"meshguard/internal/services/mesh"
)

func provisionCmd() *cobra.Command {
	var (
		name    string
		joinTTL time.Duration
	)
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create a mesh with a fresh join credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			if joinTTL == 0 {
				joinTTL = time.Duration(wireCtx.Config.JoinTTL)
			}
			m, err := wireCtx.Mesh.Provision(cmd.Context(), name, actor, mesh.ProvisionOptions{JoinTTL: joinTTL})
			if err != nil {
				return err
			}
			fmt.Printf("Mesh provisioned.\nMesh ID:         %s\nJoin credential: %s\nExpires:         %s\n",
				m.ID, m.JoinCredential, m.JoinExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "human-readable mesh name")
	cmd.Flags().DurationVar(&joinTTL, "join-ttl", 0, "join credential lifetime (default 168h)")
	return cmd
}

func rotateCredentialCmd() *cobra.Command {
	var joinTTL time.Duration
	cmd := &cobra.Command{
		Use:   "rotate-credential [mesh-id]",
		Short: "Replace a mesh's join credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, expires, err := wireCtx.Mesh.RotateJoinCredential(cmd.Context(), domain.MeshID(args[0]), actor, joinTTL)
			if err != nil {
				return err
			}
			fmt.Printf("Join credential rotated.\nCredential: %s\nAlgorithm:  %s\nExpires:    %s\n",
				signed.Token, signed.Algorithm, expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&joinTTL, "join-ttl", 0, "new credential lifetime (default 168h)")
	return cmd
}
