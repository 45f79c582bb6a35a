// Package api implements the HTTP client for the diary backend. It is the
// only place that talks to the network; the sync engine replays queued
// mutations through it and the journal service uses it for direct calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/NikhilKartha5/ai-journal/internal/common"
)

// DefaultTimeout bounds every request so a hung call cannot stall the queue.
const DefaultTimeout = 15 * time.Second

// Paths used both for direct calls and for building replayable queue items.
const (
	DiaryPath     = "/api/diary"
	CommunityPath = "/api/community"
	PingPath      = "/ping"
)

// EntryPath returns the path for a single diary entry.
func EntryPath(id string) string { return DiaryPath + "/" + id }

// ConflictError is returned when an update carried a stale baseVersion.
// Server holds the record's current state so the caller can offer a manual
// merge. It matches errors.Is(err, common.ErrVersionConflict).
type ConflictError struct {
	Server models.ServerEntry
}

func (e *ConflictError) Error() string { return "version conflict" }
func (e *ConflictError) Unwrap() error { return common.ErrVersionConflict }

// Client is a thin JSON/REST client for the diary API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the given base URL (scheme://host[:port]).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// BaseURL reports the configured server address.
func (c *Client) BaseURL() string { return c.baseURL }

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type conflictResponse struct {
	Conflict bool               `json:"conflict"`
	Server   models.ServerEntry `json:"server"`
}

// do issues one JSON request and decodes a 2xx response into out (when out is
// non-nil). Status mapping: 401/403 → common.ErrorUnauthorized (never queued
// for blind retry), 409 → *ConflictError with the server's current record,
// 404 → common.ErrorNotFound, anything else non-2xx → opaque error.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := path
	if strings.HasPrefix(path, "/") {
		url = c.baseURL + path
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusConflict:
		var cr conflictResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return fmt.Errorf("failed to decode conflict response: %w", err)
		}
		return &ConflictError{Server: cr.Server}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return common.ErrorUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrorNotFound
	default:
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		msg := er.Message
		if msg == "" {
			msg = er.Error
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
}

// Ping probes the unauthenticated health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, PingPath, "", nil, nil)
}

// AuthResponse is the body of a successful register/login call.
type AuthResponse struct {
	Token string `json:"token"`
	User  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// Register creates an account and returns a bearer token.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEntry posts a new diary entry and returns the created record with its
// server-assigned id.
func (c *Client) CreateEntry(ctx context.Context, token string, payload models.CreatePayload) (*models.ServerEntry, error) {
	var out models.ServerEntry
	if err := c.do(ctx, http.MethodPost, DiaryPath, token, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEntries fetches all of the user's entries, newest first.
func (c *Client) ListEntries(ctx context.Context, token string) ([]models.ServerEntry, error) {
	var out []models.ServerEntry
	if err := c.do(ctx, http.MethodGet, DiaryPath, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateEntry applies a partial update. A stale BaseVersion yields a
// *ConflictError carrying the server's current record.
func (c *Client) UpdateEntry(ctx context.Context, token, id string, payload models.UpdatePayload) (*models.ServerEntry, error) {
	var out models.ServerEntry
	if err := c.do(ctx, http.MethodPut, EntryPath(id), token, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEntry removes one entry.
func (c *Client) DeleteEntry(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, EntryPath(id), token, nil, nil)
}

// DeleteAll removes every entry of the authenticated user.
func (c *Client) DeleteAll(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, DiaryPath, token, nil, nil)
}

// CommunityPost is one anonymized entry in the community feed.
type CommunityPost struct {
	ID             string   `json:"id"`
	Content        string   `json:"content"`
	SentimentScore float64  `json:"sentimentScore"`
	Emotions       []string `json:"emotions"`
	Likes          int      `json:"likes"`
	CreatedAt      string   `json:"createdAt"`
	Author         string   `json:"author"`
}

// Feed fetches the community feed.
func (c *Client) Feed(ctx context.Context, token string) ([]CommunityPost, error) {
	var out []CommunityPost
	if err := c.do(ctx, http.MethodGet, CommunityPath, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PublishPost shares an anonymized post, carrying the sentiment the analyzer
// produced for its text, to the community feed.
func (c *Client) PublishPost(ctx context.Context, token, content string, sentimentScore float64, emotions []string) (*CommunityPost, error) {
	var out CommunityPost
	body := map[string]any{
		"content":        content,
		"sentimentScore": sentimentScore,
		"emotions":       emotions,
	}
	if err := c.do(ctx, http.MethodPost, CommunityPath, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Replay re-issues a queued mutation exactly as recorded. For creates the
// returned record carries the server-assigned id used to rewrite the temp id.
func (c *Client) Replay(ctx context.Context, token string, item models.QueueItem) (*models.ServerEntry, error) {
	var body any
	if len(item.Body) > 0 {
		body = json.RawMessage(item.Body)
	}
	var out models.ServerEntry
	if err := c.do(ctx, item.Method, item.URL, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
