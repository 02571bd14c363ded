package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playit-manager/playit-manager/internal/credentials"
)

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := credentials.NewStore(cfg.Dir)
			if err := store.Delete(); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", store.Path())
			return nil
		},
	}
}
