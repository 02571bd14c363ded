package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/playit-manager/playit-manager/internal/logging"
	"github.com/playit-manager/playit-manager/pkg/models"
)

// Mutator submits tunnel changes to the account service.
type Mutator interface {
	SubmitRename(ctx context.Context, tunnelID, name string) (int, error)
	SubmitPortChange(ctx context.Context, tunnelID, ip, port, newPort string) (int, error)
}

// Recorder persists mutation attempts. Failures are logged, never fatal.
type Recorder interface {
	Record(rec models.MutationRecord) error
}

const (
	FieldName = "name"
	FieldPort = "local_port"
)

// Coordinator runs a mutation as one unit: submit, interpret the status,
// invalidate the cache and refresh it.
type Coordinator struct {
	mutator  Mutator
	cache    *Cache
	recorder Recorder
	now      func() time.Time
}

// NewCoordinator wires a coordinator. recorder may be nil.
func NewCoordinator(mutator Mutator, cache *Cache, recorder Recorder) *Coordinator {
	return &Coordinator{
		mutator:  mutator,
		cache:    cache,
		recorder: recorder,
		now:      time.Now,
	}
}

// SetMutator swaps the client used for submissions.
func (c *Coordinator) SetMutator(m Mutator) {
	c.mutator = m
}

// RenameTunnel renames a tunnel. It returns true only for a 200 response.
func (c *Coordinator) RenameTunnel(ctx context.Context, tunnelID, newName string) bool {
	old, _ := c.cache.Current().Tunnel(tunnelID)
	return c.run(ctx, tunnelID, FieldName, old.Name, newName, func(m Mutator) (int, error) {
		return m.SubmitRename(ctx, tunnelID, newName)
	})
}

// ChangeTunnelPort points a tunnel at a new local port. The current ip and
// port are taken from the cached snapshot; an unknown tunnel fails without
// a request.
func (c *Coordinator) ChangeTunnelPort(ctx context.Context, tunnelID, newPort string) bool {
	tunnel, ok := c.cache.Current().Tunnel(tunnelID)
	if !ok {
		logging.Warn("mutation", "tunnel %s not in cached snapshot", tunnelID)
		return false
	}
	return c.run(ctx, tunnelID, FieldPort, tunnel.LocalPort, newPort, func(m Mutator) (int, error) {
		return m.SubmitPortChange(ctx, tunnelID, tunnel.LocalIP, tunnel.LocalPort, newPort)
	})
}

func (c *Coordinator) run(ctx context.Context, tunnelID, field, oldValue, newValue string, submit func(Mutator) (int, error)) bool {
	if c.mutator == nil {
		return false
	}

	status, err := submit(c.mutator)
	ok := err == nil && status == http.StatusOK
	c.record(tunnelID, field, oldValue, newValue, status, ok)

	if !ok {
		if err != nil {
			logging.Error("mutation", err, "%s change for tunnel %s failed", field, tunnelID)
		} else {
			logging.Warn("mutation", "%s change for tunnel %s rejected with status %d", field, tunnelID, status)
		}
		return false
	}

	c.cache.Invalidate()
	if _, err := c.cache.Read(ctx, true); err != nil {
		logging.Warn("mutation", "refresh after %s change failed: %v", field, err)
	}
	logging.Info("mutation", "%s of tunnel %s changed to %q", field, tunnelID, newValue)
	return true
}

func (c *Coordinator) record(tunnelID, field, oldValue, newValue string, status int, ok bool) {
	if c.recorder == nil {
		return
	}
	rec := models.MutationRecord{
		ID:         uuid.NewString(),
		RecordedAt: c.now().UTC(),
		TunnelID:   tunnelID,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		Status:     status,
		Success:    ok,
	}
	if err := c.recorder.Record(rec); err != nil {
		logging.Error("mutation", err, "failed to journal %s change", field)
	}
}
