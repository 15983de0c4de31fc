package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"fc-pro-backend/internal/features/identity/models"
)

// Client talks to the upstream Farcaster profile API and the fname
// transfer registry. All calls go through a shared circuit breaker so a
// struggling upstream fails fast instead of piling up requests.
type Client struct {
	httpClient *http.Client
	apiBase    string
	fnameBase  string
	apiToken   string
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func New(apiBase, fnameBase, apiToken string) *Client {
	settings := gobreaker.Settings{
		Name:    "farcaster-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		httpClient: &http.Client{Timeout: 8 * time.Second},
		apiBase:    strings.TrimRight(apiBase, "/"),
		fnameBase:  strings.TrimRight(fnameBase, "/"),
		apiToken:   apiToken,
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiToken)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("http %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// Profile fetches display data for a numeric identity.
func (c *Client) Profile(ctx context.Context, fid uint64) (*models.Profile, error) {
	u := fmt.Sprintf("%s/api/profile?fid=%d", c.apiBase, fid)
	var p models.Profile
	if err := c.getJSON(ctx, u, &p); err != nil {
		return nil, fmt.Errorf("profile fid=%d: %w", fid, err)
	}
	return &p, nil
}

// ProStatus fetches the pro subscription expiry for a numeric identity.
func (c *Client) ProStatus(ctx context.Context, fid uint64) (*models.ProStatus, error) {
	u := fmt.Sprintf("%s/api/proStatus?fid=%d", c.apiBase, fid)
	var st models.ProStatus
	if err := c.getJSON(ctx, u, &st); err != nil {
		return nil, fmt.Errorf("proStatus fid=%d: %w", fid, err)
	}
	return &st, nil
}

// LookupUsername resolves a registered name to its numeric identity via the
// fname transfer registry (name-proof lookup).
func (c *Client) LookupUsername(ctx context.Context, name string) (uint64, error) {
	u := fmt.Sprintf("%s/transfers/current?name=%s", c.fnameBase, url.QueryEscape(name))
	var out struct {
		Transfer struct {
			To uint64 `json:"to"`
		} `json:"transfer"`
	}
	if err := c.getJSON(ctx, u, &out); err != nil {
		return 0, fmt.Errorf("fname lookup %q: %w", name, err)
	}
	if out.Transfer.To == 0 {
		return 0, fmt.Errorf("fname lookup %q: no owner", name)
	}
	return out.Transfer.To, nil
}
