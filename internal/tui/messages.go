package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/playit-manager/playit-manager/internal/nav"
	"github.com/playit-manager/playit-manager/internal/playit"
	"github.com/playit-manager/playit-manager/internal/session"
	"github.com/playit-manager/playit-manager/pkg/models"
)

// Message types for async operations
type (
	// snapshotLoadedMsg carries the result of a cache read
	snapshotLoadedMsg struct {
		Snapshot *models.Snapshot
		Err      error
	}

	// mutationDoneMsg is sent once a mutation and its refresh have finished
	mutationDoneMsg struct {
		Field nav.Field
		OK    bool
	}

	// loginDoneMsg carries the outcome of an interactive login
	loginDoneMsg struct {
		Client   *playit.Client
		Email    string
		Password string
		Err      error
	}

	// TickMsg is sent periodically for spinner animation
	TickMsg time.Time
)

// readCmd reads through the session cache, fetching only if stale or forced
func readCmd(ctx context.Context, cache *session.Cache, force bool) tea.Cmd {
	return func() tea.Msg {
		snap, err := cache.Read(ctx, force)
		return snapshotLoadedMsg{Snapshot: snap, Err: err}
	}
}

// mutateCmd runs a rename or port change through the coordinator
func mutateCmd(ctx context.Context, coord *session.Coordinator, field nav.Field, tunnelID, value string) tea.Cmd {
	return func() tea.Msg {
		var ok bool
		switch field {
		case nav.FieldName:
			ok = coord.RenameTunnel(ctx, tunnelID, value)
		case nav.FieldPort:
			ok = coord.ChangeTunnelPort(ctx, tunnelID, value)
		}
		return mutationDoneMsg{Field: field, OK: ok}
	}
}

// loginCmd exchanges credentials for an authenticated client
func loginCmd(ctx context.Context, cfg playit.ClientConfig, email, password string) tea.Cmd {
	return func() tea.Msg {
		client, err := session.LoginWithCredentials(ctx, cfg, email, password)
		return loginDoneMsg{Client: client, Email: email, Password: password, Err: err}
	}
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
