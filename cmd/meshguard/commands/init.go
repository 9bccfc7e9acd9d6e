package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var nodeID string
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"keygen"},
		Short:   "Create or load the local node identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			svc, err := wireCtx.OpenNodeIdentity(nodeID, passphrase)
			if err != nil {
				return err
			}
			keys := svc.PublicKeys()
			fmt.Printf("Node identity ready.\nNode ID: %s\nKey ID:  %s\nKEM:     %s\nSig:     %s\n",
				svc.NodeID(), keys.KeyID, keys.KEMAlgorithm, keys.SigAlgorithm)
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeID, "node-id", "", "node identifier (generated if empty)")
	return cmd
}
