package models

import "time"

// TunnelSummary is the part of a tunnel record the manager reads and edits
type TunnelSummary struct {
	ID             string
	Name           string
	AssignedDomain string
	LocalIP        string
	LocalPort      string
}

// Snapshot represents the account state fetched at one point in time.
// It is never modified after construction; a refresh replaces it.
type Snapshot struct {
	Tunnels   []TunnelSummary
	FetchedAt time.Time
	Raw       []byte // Undecoded account document
}

// Tunnel returns the tunnel with the given id
func (s *Snapshot) Tunnel(id string) (TunnelSummary, bool) {
	if s == nil {
		return TunnelSummary{}, false
	}
	for _, t := range s.Tunnels {
		if t.ID == id {
			return t, true
		}
	}
	return TunnelSummary{}, false
}

// MutationRecord is one rename or port change attempt
type MutationRecord struct {
	ID         string
	RecordedAt time.Time
	TunnelID   string
	Field      string
	OldValue   string
	NewValue   string
	Status     int
	Success    bool
}

// TunnelActivity aggregates the journal for one tunnel
type TunnelActivity struct {
	TunnelID   string
	Attempts   int
	Succeeded  int
	LastChange time.Time
}
