package playit

import (
	"bytes"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/playit-manager/playit-manager/pkg/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// accountDocument mirrors only the paths of the account document that the
// manager reads. Everything else stays in Snapshot.Raw.
type accountDocument struct {
	Tunnels struct {
		Tunnels []tunnelRecord `json:"tunnels"`
	} `json:"tunnels"`
}

type tunnelRecord struct {
	ID    textValue `json:"id"`
	Name  textValue `json:"name"`
	Alloc struct {
		Data struct {
			AssignedDomain textValue `json:"assigned_domain"`
		} `json:"data"`
	} `json:"alloc"`
	Origin struct {
		Data struct {
			LocalIP   textValue `json:"local_ip"`
			LocalPort textValue `json:"local_port"`
		} `json:"data"`
	} `json:"origin"`
}

// textValue accepts a JSON string, number, bool or null and keeps its text.
type textValue string

func (v *textValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = textValue(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return errors.New("expected scalar value")
	default:
		*v = textValue(data)
	}
	return nil
}

// ParseSnapshot decodes an account document into a Snapshot.
func ParseSnapshot(body []byte, fetchedAt time.Time) (*models.Snapshot, error) {
	var doc accountDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	tunnels := make([]models.TunnelSummary, 0, len(doc.Tunnels.Tunnels))
	for _, r := range doc.Tunnels.Tunnels {
		tunnels = append(tunnels, models.TunnelSummary{
			ID:             string(r.ID),
			Name:           string(r.Name),
			AssignedDomain: string(r.Alloc.Data.AssignedDomain),
			LocalIP:        string(r.Origin.Data.LocalIP),
			LocalPort:      string(r.Origin.Data.LocalPort),
		})
	}

	raw := make([]byte, len(body))
	copy(raw, body)
	return &models.Snapshot{
		Tunnels:   tunnels,
		FetchedAt: fetchedAt,
		Raw:       raw,
	}, nil
}
