// Package remote talks to the shared realtime document store over HTTPS.
//
// The store exposes two collections:
//
//	GET    /entries          paged list, {"value": [...], "nextLink": "..."}
//	PUT    /entries/{id}     upsert one entry
//	DELETE /entries/{id}     delete one entry
//	GET    /settings         the settings document
//	PATCH  /settings         merge fields into the settings document
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/storage"
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("document store %s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Client is a storage.Backend backed by the document store.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

var _ storage.Backend = (*Client)(nil)

// NewClient returns a client for baseURL that authenticates every request
// with tokens from ts.
func NewClient(ctx context.Context, baseURL string, ts oauth2.TokenSource) (*Client, error) {
	return newClient(baseURL, oauth2.NewClient(ctx, ts))
}

// NewClientWithHTTP returns a client that sends requests through hc as is.
func NewClientWithHTTP(baseURL string, hc *http.Client) (*Client, error) {
	return newClient(baseURL, hc)
}

func newClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid document store url %q", baseURL)
	}
	return &Client{base: u, httpClient: hc}, nil
}

// entriesPage is one page of the entries collection.
type entriesPage struct {
	Value    []model.TimeEntry `json:"value"`
	NextLink string            `json:"nextLink"`
}

func (c *Client) resolve(ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return c.base.String() + strings.TrimLeft(ref, "/")
	}
	return c.base.ResolveReference(r).String()
}

// do sends a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("document store request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, data, &StatusError{Method: method, URL: endpoint, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return resp.StatusCode, data, nil
}

// Load fetches every entry page and the settings document. A missing
// settings document yields the defaults.
func (c *Client) Load(ctx context.Context) (storage.Snapshot, error) {
	snap := storage.Snapshot{Entries: []model.TimeEntry{}}

	endpoint := c.resolve("entries")
	for endpoint != "" {
		_, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return storage.Snapshot{}, err
		}
		var page entriesPage
		if err := json.Unmarshal(body, &page); err != nil {
			return storage.Snapshot{}, fmt.Errorf("decoding entries page: %w", err)
		}
		snap.Entries = append(snap.Entries, page.Value...)
		endpoint = ""
		if page.NextLink != "" {
			endpoint = c.resolve(page.NextLink)
		}
	}

	code, body, err := c.do(ctx, http.MethodGet, c.resolve("settings"), nil)
	switch {
	case code == http.StatusNotFound:
		snap.Settings = model.DefaultSettings()
	case err != nil:
		return storage.Snapshot{}, err
	default:
		snap.Settings = model.DecodeSettingsJSON(body)
	}
	return snap, nil
}

// UpsertEntry writes e under its ID.
func (c *Client) UpsertEntry(ctx context.Context, e model.TimeEntry) error {
	_, _, err := c.do(ctx, http.MethodPut, c.resolve("entries/"+url.PathEscape(e.ID)), e)
	return err
}

// DeleteEntry removes the entry with id. A 404 counts as success.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	code, _, err := c.do(ctx, http.MethodDelete, c.resolve("entries/"+url.PathEscape(id)), nil)
	if code == http.StatusNotFound {
		return nil
	}
	return err
}

// SaveSettings merges the known settings fields into the remote document.
func (c *Client) SaveSettings(ctx context.Context, s model.Settings) error {
	fields, err := s.Fields()
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, _, err = c.do(ctx, http.MethodPatch, c.resolve("settings"), fields)
	return err
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
