package session

import (
	"context"
	"fmt"

	"github.com/playit-manager/playit-manager/internal/logging"
	"github.com/playit-manager/playit-manager/internal/playit"
)

// LoginWithCredentials exchanges email and password for a session and
// returns a client that sends it on every request.
func LoginWithCredentials(ctx context.Context, cfg playit.ClientConfig, email, password string) (*playit.Client, error) {
	cfg.SessionID = ""
	id, err := playit.NewClient(cfg).Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to log in as %s: %w", email, err)
	}
	return LoginWithSessionID(ctx, cfg, id)
}

// LoginWithSessionID builds a client for an existing session and validates
// it with one snapshot fetch. A failed fetch is the only sign of an invalid
// or expired session.
func LoginWithSessionID(ctx context.Context, cfg playit.ClientConfig, id string) (*playit.Client, error) {
	cfg.SessionID = id
	client := playit.NewClient(cfg)
	if _, err := client.FetchSnapshot(ctx); err != nil {
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}
	logging.Info("bootstrap", "session validated")
	return client, nil
}
