package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/playit-manager/playit-manager/internal/playit"
	"github.com/playit-manager/playit-manager/pkg/models"
)

// versionedFetcher returns a new snapshot on every call; tunnel names carry
// the fetch number so tests can tell snapshots apart.
type versionedFetcher struct {
	mu      sync.Mutex
	calls   int
	failing error
	tunnels []models.TunnelSummary
}

func (f *versionedFetcher) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing != nil {
		return nil, f.failing
	}
	tunnels := make([]models.TunnelSummary, len(f.tunnels))
	copy(tunnels, f.tunnels)
	for i := range tunnels {
		tunnels[i].Name = fmt.Sprintf("%s-v%d", tunnels[i].Name, f.calls)
	}
	return &models.Snapshot{Tunnels: tunnels}, nil
}

func (f *versionedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type submission struct {
	kind, tunnelID, ip, port, value string
}

type fakeMutator struct {
	status      int
	err         error
	submissions []submission
}

func (m *fakeMutator) SubmitRename(ctx context.Context, tunnelID, name string) (int, error) {
	m.submissions = append(m.submissions, submission{kind: "rename", tunnelID: tunnelID, value: name})
	return m.status, m.err
}

func (m *fakeMutator) SubmitPortChange(ctx context.Context, tunnelID, ip, port, newPort string) (int, error) {
	m.submissions = append(m.submissions, submission{kind: "port", tunnelID: tunnelID, ip: ip, port: port, value: newPort})
	return m.status, m.err
}

type memoryRecorder struct {
	records []models.MutationRecord
	err     error
}

func (r *memoryRecorder) Record(rec models.MutationRecord) error {
	r.records = append(r.records, rec)
	return r.err
}

var errTransport = &playit.TransportError{Op: "fetch account", Err: errors.New("connection reset")}

func twoTunnels() []models.TunnelSummary {
	return []models.TunnelSummary{
		{ID: "t-1", Name: "alpha", AssignedDomain: "a.ply.gg", LocalIP: "127.0.0.1", LocalPort: "8080"},
		{ID: "t-2", Name: "beta", AssignedDomain: "b.ply.gg", LocalIP: "192.168.1.5", LocalPort: "25565"},
	}
}
