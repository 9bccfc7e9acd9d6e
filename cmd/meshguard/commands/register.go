package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"meshguard/internal/domain"
	"meshguard/internal/services/mesh"
)

func registerCmd() *cobra.Command {
	var (
		credential  string
		deviceClass string
		hardwareID  string
		enclave     bool
	)
	cmd := &cobra.Command{
		Use:   "register [mesh-id]",
		Short: "Enroll this node into a mesh (pending approval)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if credential == "" {
				return fmt.Errorf("credential required (--credential)")
			}
			svc, err := wireCtx.OpenNodeIdentity("", passphrase)
			if err != nil {
				return err
			}

			res, err := wireCtx.Mesh.Register(cmd.Context(), domain.MeshID(args[0]), mesh.RegisterRequest{
				NodeID:      svc.NodeID(),
				Credential:  credential,
				DeviceClass: domain.DeviceClass(deviceClass),
				PublicKeys:  svc.PublicKeys(),
				Attestation: domain.AttestationMetadata{
					HardwareID:     hardwareID,
					EnclaveEnabled: enclave,
				},
			})
			if err != nil {
				return err
			}
			fmt.Printf("Registered.\nNode ID:        %s\nState:          %s\nEnrolled via:   %s\nSecurity level: %s\n",
				res.NodeID, res.State, res.EnrollmentMode, res.SecurityLevel)
			return nil
		},
	}
	cmd.Flags().StringVar(&credential, "credential", "", "join credential or reissue token")
	cmd.Flags().StringVar(&deviceClass, "class", "drone", "device class (edge|sensor|drone|gateway|server)")
	cmd.Flags().StringVar(&hardwareID, "hardware-id", "", "attested hardware identifier")
	cmd.Flags().BoolVar(&enclave, "enclave", false, "node has a secure enclave")
	return cmd
}
