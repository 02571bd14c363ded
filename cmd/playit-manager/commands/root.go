package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/playit-manager/playit-manager/internal/config"
	"github.com/playit-manager/playit-manager/internal/credentials"
	"github.com/playit-manager/playit-manager/internal/journal"
	"github.com/playit-manager/playit-manager/internal/logging"
	"github.com/playit-manager/playit-manager/internal/playit"
	"github.com/playit-manager/playit-manager/internal/session"
	"github.com/playit-manager/playit-manager/internal/tui"
)

var debugMode bool

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "playit-manager",
		Short: "Browse and edit your playit.gg tunnels",
		Long: `playit-manager is a TUI for the tunnels of a playit.gg account.
It lists tunnels, shows their domain, name and local port, and lets you
rename a tunnel or point it at a different local port.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Log at debug level")
	rootCmd.AddCommand(NewTunnelsCommand())
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewHistoryCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --debug flag.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if debugMode {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// storedLogin tries the saved credentials. A nil client with a nil error
// means there is nothing usable stored and the operator has to log in.
func storedLogin(ctx context.Context, cfg config.Config, store *credentials.Store) (*playit.Client, error) {
	creds, err := store.Load()
	if errors.Is(err, credentials.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logging.Warn("cli", "ignoring unreadable credentials: %v", err)
		return nil, nil
	}

	client, err := session.LoginWithCredentials(ctx, cfg.ClientConfig(), creds.Email, creds.Password)
	if errors.Is(err, playit.ErrNotAuthenticated) {
		logging.Info("cli", "stored credentials for %s were rejected", creds.Email)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closer, err := logging.InitForTUI(logging.ParseLevel(cfg.LogLevel), cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	store := credentials.NewStore(cfg.Dir)
	client, err := storedLogin(cmd.Context(), cfg, store)
	if err != nil {
		// Network trouble at startup; fall through to the prompt.
		logging.Error("cli", err, "login with stored credentials failed")
		client = nil
	}

	sess := session.New(client, journal.NewWriter(cfg.JournalPath()))
	if err := tui.ShowTUI(tui.Options{
		Session:      sess,
		Credentials:  store,
		ClientConfig: cfg.ClientConfig(),
	}); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
