package playit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountBody = `{
	"account": {"id": 7},
	"tunnels": {"tunnels": [
		{"id": "t-1", "name": "survival",
		 "alloc": {"data": {"assigned_domain": "mc.joinmc.link"}},
		 "origin": {"data": {"local_ip": "127.0.0.1", "local_port": 25565}}},
		{"id": "t-2", "name": null,
		 "alloc": {"data": {"assigned_domain": "web.ply.gg"}},
		 "origin": {"data": {"local_ip": "10.0.0.2", "local_port": "8080"}}}
	]}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, SessionID: "sess-1", Timeout: 5 * time.Second})
}

func TestFetchSnapshot(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/account/", r.URL.Path)
		assert.Equal(t, "routes/account", r.URL.Query().Get("_data"))
		assert.Equal(t, "__session=sess-1", r.Header.Get("Cookie"))
		_, _ = io.WriteString(w, accountBody)
	})

	snap, err := c.FetchSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Tunnels, 2)

	assert.Equal(t, "t-1", snap.Tunnels[0].ID)
	assert.Equal(t, "survival", snap.Tunnels[0].Name)
	assert.Equal(t, "mc.joinmc.link", snap.Tunnels[0].AssignedDomain)
	assert.Equal(t, "127.0.0.1", snap.Tunnels[0].LocalIP)
	assert.Equal(t, "25565", snap.Tunnels[0].LocalPort)

	assert.Equal(t, "", snap.Tunnels[1].Name)
	assert.Equal(t, "8080", snap.Tunnels[1].LocalPort)
	assert.JSONEq(t, accountBody, string(snap.Raw))
}

func TestFetchSnapshotStatusHandling(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "no content means logged out",
			status: http.StatusNoContent,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotAuthenticated)
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadGateway, se.StatusCode)
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"tunnels": {"tunnels": [`,
			check: func(t *testing.T, err error) {
				var pe *ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
		{
			name:   "object where a field is expected",
			status: http.StatusOK,
			body:   `{"tunnels": {"tunnels": [{"id": {"nested": true}}]}}`,
			check: func(t *testing.T, err error) {
				var pe *ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.FetchSnapshot(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFetchSnapshotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	_, err := c.FetchSnapshot(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "fetch account", te.Op)
}

func TestLoginExtractsSessionCookie(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "routes/login", r.URL.Query().Get("_data"))
		assert.Empty(t, r.Header.Get("Cookie"))
		assert.Equal(t, formContentType, r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "_action=login&email=me%40example.com&password=p%26ss", string(body))

		w.Header().Add("Set-Cookie", "__session=abc123; Path=/; HttpOnly")
		w.WriteHeader(http.StatusNoContent)
	})

	id, err := c.Login(context.Background(), "me@example.com", "p&ss")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
}

func TestLoginWithoutCookie(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Login(context.Background(), "me@example.com", "wrong")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSubmitRename(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/account/tunnels/t-1/rename", r.URL.Path)
		assert.Equal(t, "routes/account/tunnels/$tunnelId/rename", r.URL.Query().Get("_data"))
		assert.Equal(t, "__session=sess-1", r.Header.Get("Cookie"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "name=my+server", string(body))
	})

	status, err := c.SubmitRename(context.Background(), "t-1", "my server")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestSubmitPortChangePayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/tunnels/t-1", r.URL.Path)
		assert.Equal(t, "routes/account/tunnels/$tunnelId", r.URL.Query().Get("_data"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t,
			"_action=local-address&agent_id=t-1&local_ip_og=127.0.0.1&local_port_og=25565&local_ip=&local_port=25566",
			string(body))
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	status, err := c.SubmitPortChange(context.Background(), "t-1", "127.0.0.1", "25565", "25566")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestWithSessionDoesNotMutateOriginal(t *testing.T) {
	c := NewClient(ClientConfig{SessionID: "a"})
	d := c.WithSession("b")

	assert.Equal(t, "a", c.SessionID())
	assert.Equal(t, "b", d.SessionID())
	assert.Equal(t, DefaultBaseURL, d.baseURL)
}
