package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/playit-manager/playit-manager/internal/credentials"
	"github.com/playit-manager/playit-manager/internal/logging"
	"github.com/playit-manager/playit-manager/internal/session"
)

// NewTunnelsCommand creates the tunnels command
func NewTunnelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tunnels",
		Short: "List tunnels without the TUI",
		Args:  cobra.NoArgs,
		RunE:  runTunnels,
	}
}

func runTunnels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.InitForCLI(logging.ParseLevel(cfg.LogLevel))

	client, err := storedLogin(cmd.Context(), cfg, credentials.NewStore(cfg.Dir))
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("not logged in, run 'playit-manager login' first")
	}

	sess := session.New(client, nil)
	snap, err := sess.Cache.Read(cmd.Context(), false)
	if err != nil {
		return err
	}

	if len(snap.Tunnels) == 0 {
		fmt.Println("No tunnels found")
		return nil
	}

	fmt.Printf("Tunnels (fetched %s):\n", humanize.Time(snap.FetchedAt))
	fmt.Println("=========")
	for i, t := range snap.Tunnels {
		fmt.Printf("%d. %s\n", i+1, t.Name)
		fmt.Printf("   ID: %s\n", t.ID)
		fmt.Printf("   Domain: %s\n", t.AssignedDomain)
		fmt.Printf("   Local: %s:%s\n", t.LocalIP, t.LocalPort)
		fmt.Println()
	}
	return nil
}
