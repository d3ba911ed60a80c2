package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/craftops/console-agent/common"
	"github.com/craftops/console-agent/types"

	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

const csrfCacheKey = "csrf-token"

// APIError is a failure the panel itself reported, either a non-2xx
// status or a success:false envelope
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client talks to the panel REST API
type Client struct {
	endpoint string
	token    string
	httpc    *http.Client
	cache    *gocache.Cache
}

// New creates a panel api client
func New(config *types.Config) *Client {
	return &Client{
		endpoint: strings.TrimRight(config.Panel.Endpoint, "/"),
		token:    config.Panel.Token,
		httpc: &http.Client{
			Timeout: config.GetConnectionTimeout(),
		},
		cache: gocache.New(common.CSRFTokenTTL, common.CSRFTokenTTL),
	}
}

// envelope is the common response wrapper: either success with a payload
// or an error message
type envelope struct {
	Success *bool           `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// csrfToken fetches the CSRF token once and reuses it until the cache
// expires. Refresh-on-403 is handled by the caller getting a fresh token
// on the next request after Flush.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if token, ok := c.cache.Get(csrfCacheKey); ok {
		return token.(string), nil
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.get(ctx, "/api/csrf-token", &out); err != nil {
		return "", err
	}
	c.cache.SetDefault(csrfCacheKey, out.Token)
	return out.Token, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if method != http.MethodGet {
		token, err := c.csrfToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set(common.CSRFHeader, token)
	}
	return req, nil
}

// do runs the request and decodes the response into out. HTTP-not-ok and
// success:false are both failure paths but keep their own messages.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env envelope
		if err := json.Unmarshal(bs, &env); err == nil && env.Error != "" {
			apiErr.Message = env.Error
		}
		if resp.StatusCode == http.StatusForbidden {
			// stale CSRF token, force a refetch on the next mutating call
			c.cache.Delete(csrfCacheKey)
		}
		return apiErr
	}

	var env envelope
	envErr := json.Unmarshal(bs, &env)
	if envErr == nil && env.Success != nil && !*env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}

	if out == nil {
		return nil
	}
	// endpoints without an envelope return the payload directly
	payload := bs
	if envErr == nil && env.Data != nil {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		log.Debugf("[client] undecodable payload from %s: %s", req.URL.Path, string(bs))
		return fmt.Errorf("%w: %s", common.ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// Status fetches the server status snapshot
func (c *Client) Status(ctx context.Context) (*types.ServerStatus, error) {
	status := &types.ServerStatus{}
	if err := c.get(ctx, "/api/server/status", status); err != nil {
		return nil, err
	}
	return status, nil
}

// Players fetches the online player list
func (c *Client) Players(ctx context.Context) ([]types.Player, error) {
	var players []types.Player
	if err := c.get(ctx, "/api/players", &players); err != nil {
		return nil, err
	}
	return players, nil
}

// Backups fetches the known backup archives
func (c *Client) Backups(ctx context.Context) ([]types.Backup, error) {
	var backups []types.Backup
	if err := c.get(ctx, "/api/backups", &backups); err != nil {
		return nil, err
	}
	return backups, nil
}

// Jobs fetches the current job list snapshot, most recent first
func (c *Client) Jobs(ctx context.Context, limit int) ([]*types.Job, error) {
	var jobs []*types.Job
	path := fmt.Sprintf("/api/jobs?limit=%d", limit)
	if err := c.get(ctx, path, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// SubmitJob asks the panel to start an asynchronous operation and
// returns the new job id
func (c *Client) SubmitJob(ctx context.Context, action types.JobAction, target string, options map[string]interface{}) (string, error) {
	body := map[string]interface{}{
		"action": action,
		"target": target,
	}
	if len(options) > 0 {
		body["options"] = options
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/api/jobs", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CancelJob asks the panel to cancel a queued or running job
func (c *Client) CancelJob(ctx context.Context, ID string) error {
	return c.post(ctx, "/api/jobs/"+url.PathEscape(ID)+"/cancel", nil, nil)
}

// Execute runs a console command on the server
func (c *Client) Execute(ctx context.Context, command string) error {
	body := map[string]string{"command": command}
	return c.post(ctx, "/api/server/execute", body, nil)
}
