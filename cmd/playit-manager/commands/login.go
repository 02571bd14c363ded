package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/playit-manager/playit-manager/internal/credentials"
	"github.com/playit-manager/playit-manager/internal/logging"
	"github.com/playit-manager/playit-manager/internal/session"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and store the credentials",
		Long: `Prompts for the playit.gg email and password, checks them against the
service and stores them for later runs.

NOTE: the credentials are stored in plaintext.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.InitForCLI(logging.ParseLevel(cfg.LogLevel))

	fmt.Print("Email: ")
	email, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := string(raw)

	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	if _, err := session.LoginWithCredentials(cmd.Context(), cfg.ClientConfig(), email, password); err != nil {
		return err
	}

	store := credentials.NewStore(cfg.Dir)
	if err := store.Save(credentials.Credentials{Email: email, Password: password}); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s, credentials stored in %s\n", email, store.Path())
	return nil
}
