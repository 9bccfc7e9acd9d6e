package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"meshguard/internal/app"
)

var (
	home       string
	passphrase string
	actor      string
	verbose    bool

	wireCtx *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "meshguard",
		Short: "Post-quantum trust core for mesh networks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".meshguard")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			wireCtx, err = app.NewWire(cfg, logger)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.meshguard)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting node keys")
	root.PersistentFlags().StringVar(&actor, "actor", "admin", "actor recorded in audit events")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		initCmd(), provisionCmd(), rotateCredentialCmd(),
		registerCmd(), pendingCmd(), approveCmd(), revokeCmd(), reissueCmd(),
		policyCmd(), checkCmd(), nodeConfigCmd(), nodesCmd(),
		auditCmd(), statusCmd(),
	)
	return root.Execute()
}
