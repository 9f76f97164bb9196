package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Environment variables
const (
	EnvBaseURL  = "CERTPAGE_BASE_URL"
	EnvAPIToken = "CERTPAGE_API_TOKEN"
)

// Sentinel errors
var (
	// ErrVersionConflict is returned when the page was modified between the
	// caller's fetch and save. The caller retries the whole transaction
	// from a fresh fetch.
	ErrVersionConflict = errors.New("page version conflict")

	// ErrPageNotFound is returned for unknown page IDs
	ErrPageNotFound = errors.New("page not found")

	// ErrNoBaseURL is returned by NewFromEnv when no base URL is configured
	ErrNoBaseURL = errors.New("page store base URL not set")
)

// Page is one document fetched from the page store. Version is the
// optimistic-concurrency token: updates send Version+1 and the store rejects
// them with a conflict if someone else got there first.
type Page struct {
	ID      string
	Title   string
	Body    string
	Version int
}

// PageStore is the remote document store the publisher works against
type PageStore interface {
	GetPage(ctx context.Context, id string) (*Page, error)
	UpdatePage(ctx context.Context, page *Page) (*Page, error)
}

// Client is a JSON-over-HTTP PageStore for a Confluence-style content API
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	retry      RetryConfig
}

// NewClient creates a page store client. The token may be empty for stores
// that allow anonymous access.
func NewClient(baseURL, apiToken string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: DefaultRetryConfig(),
	}, nil
}

// NewFromEnv creates a client from CERTPAGE_BASE_URL and CERTPAGE_API_TOKEN
func NewFromEnv() (*Client, error) {
	baseURL := os.Getenv(EnvBaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoBaseURL, EnvBaseURL)
	}
	return NewClient(baseURL, os.Getenv(EnvAPIToken))
}

// Wire types for the content API

type pageEnvelope struct {
	ID      string       `json:"id"`
	Type    string       `json:"type"`
	Title   string       `json:"title"`
	Version versionField `json:"version"`
	Body    bodyField    `json:"body"`
}

type versionField struct {
	Number int `json:"number"`
}

type bodyField struct {
	Storage storageField `json:"storage"`
}

type storageField struct {
	Value          string `json:"value"`
	Representation string `json:"representation,omitempty"`
}

// GetPage fetches a page's storage-format body and current version
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	if id == "" {
		return nil, errors.New("page id is required")
	}

	endpoint := fmt.Sprintf("%s/rest/api/content/%s?expand=body.storage,version", c.baseURL, url.PathEscape(id))

	env, err := retryWithBackoff(ctx, c.retry, func() (*pageEnvelope, error) {
		return c.doGet(ctx, endpoint)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", id, err)
	}

	return &Page{
		ID:      env.ID,
		Title:   env.Title,
		Body:    env.Body.Storage.Value,
		Version: env.Version.Number,
	}, nil
}

// UpdatePage saves a new body for the page, bumping its version by one. The
// page's Version must be the version the body was derived from; a stale
// version yields ErrVersionConflict and nothing is written.
func (c *Client) UpdatePage(ctx context.Context, page *Page) (*Page, error) {
	if page == nil || page.ID == "" {
		return nil, errors.New("page with id is required")
	}

	endpoint := fmt.Sprintf("%s/rest/api/content/%s", c.baseURL, url.PathEscape(page.ID))
	payload := pageEnvelope{
		ID:      page.ID,
		Type:    "page",
		Title:   page.Title,
		Version: versionField{Number: page.Version + 1},
		Body: bodyField{
			Storage: storageField{Value: page.Body, Representation: "storage"},
		},
	}

	env, err := retryWithBackoff(ctx, c.retry, func() (*pageEnvelope, error) {
		return c.doPut(ctx, endpoint, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update page %s: %w", page.ID, err)
	}

	return &Page{
		ID:      env.ID,
		Title:   env.Title,
		Body:    env.Body.Storage.Value,
		Version: env.Version.Number,
	}, nil
}

func (c *Client) doGet(ctx context.Context, endpoint string) (*pageEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	return c.do(req)
}

func (c *Client) doPut(ctx context.Context, endpoint string, payload pageEnvelope) (*pageEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
}

func (c *Client) do(req *http.Request) (*pageEnvelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{err: err}
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, ErrVersionConflict
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrPageNotFound
	case resp.StatusCode >= 500:
		return nil, &transientError{err: fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(data, 200))}
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("request rejected with %d: %s", resp.StatusCode, truncate(data, 200))
	}

	var env pageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &env, nil
}

// transientError marks failures worth retrying with backoff
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
