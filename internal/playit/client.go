package playit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/playit-manager/playit-manager/internal/logging"
	"github.com/playit-manager/playit-manager/pkg/models"
)

const (
	DefaultBaseURL = "https://playit.gg"
	DefaultTimeout = 30 * time.Second

	sessionCookie   = "__session"
	formContentType = "application/x-www-form-urlencoded;charset=UTF-8"

	accountPath = "/account/?_data=routes%2Faccount"
	loginPath   = "/login?_data=routes%2Flogin"
	renamePath  = "/account/tunnels/%s/rename?_data=routes%%2Faccount%%2Ftunnels%%2F%%24tunnelId%%2Frename"
	tunnelPath  = "/account/tunnels/%s?_data=routes%%2Faccount%%2Ftunnels%%2F%%24tunnelId"
)

// ClientConfig configures a Client. Zero values fall back to defaults.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	SessionID  string
	HTTPClient *http.Client
}

// Client talks to the playit.gg account web interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sessionID  string
}

// NewClient creates a client. When cfg.HTTPClient is nil a new one is built
// with cfg.Timeout.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		sessionID:  cfg.SessionID,
	}
}

// SessionID returns the session identifier sent with every request.
func (c *Client) SessionID() string {
	return c.sessionID
}

// WithSession returns a copy of the client that authenticates as id.
func (c *Client) WithSession(id string) *Client {
	clone := *c
	clone.sessionID = id
	return &clone
}

// FetchSnapshot downloads and parses the account document.
func (c *Client) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	const op = "fetch account"

	resp, err := c.do(ctx, http.MethodGet, accountPath, "")
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, ErrNotAuthenticated
	default:
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return ParseSnapshot(body, time.Now())
}

// Login posts credentials and returns the session identifier from the
// response's session cookie.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	const op = "login"

	body := encodeForm(
		formField{"_action", "login"},
		formField{"email", email},
		formField{"password", password},
	)
	anonymous := c.WithSession("")
	resp, err := anonymous.do(ctx, http.MethodPost, loginPath, body)
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	cookies := resp.Cookies()
	for _, cookie := range cookies {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	if len(cookies) > 0 && cookies[0].Value != "" {
		return cookies[0].Value, nil
	}
	logging.Debug("playit", "login response status %d carried no session cookie", resp.StatusCode)
	return "", ErrNotAuthenticated
}

// SubmitRename posts the rename form for a tunnel and returns the status code.
func (c *Client) SubmitRename(ctx context.Context, tunnelID, name string) (int, error) {
	body := encodeForm(formField{"name", name})
	return c.submit(ctx, "rename tunnel", fmt.Sprintf(renamePath, url.PathEscape(tunnelID)), body)
}

// SubmitPortChange posts the local-address form for a tunnel. The service
// expects the current ip and port echoed back and an empty new ip.
func (c *Client) SubmitPortChange(ctx context.Context, tunnelID, ip, port, newPort string) (int, error) {
	body := encodeForm(
		formField{"_action", "local-address"},
		formField{"agent_id", tunnelID},
		formField{"local_ip_og", ip},
		formField{"local_port_og", port},
		formField{"local_ip", ""},
		formField{"local_port", newPort},
	)
	return c.submit(ctx, "change tunnel port", fmt.Sprintf(tunnelPath, url.PathEscape(tunnelID)), body)
}

func (c *Client) submit(ctx context.Context, op, path, body string) (int, error) {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) do(ctx context.Context, method, path, body string) (*http.Response, error) {
	var reader io.Reader
	if body != "" || method == http.MethodPost {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", formContentType)
	}
	if c.sessionID != "" {
		req.Header.Set("Cookie", sessionCookie+"="+c.sessionID)
	}

	logging.Debug("playit", "%s %s", method, path)
	return c.httpClient.Do(req)
}

type formField struct {
	key, value string
}

// encodeForm keeps field order, unlike url.Values.Encode.
func encodeForm(fields ...formField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, url.QueryEscape(f.key)+"="+url.QueryEscape(f.value))
	}
	return strings.Join(parts, "&")
}
