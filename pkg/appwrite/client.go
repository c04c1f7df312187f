// Package appwrite provides a client for the Appwrite Databases API,
// covering the four document operations this project consumes.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Appwrite document operations.
type Client interface {
	// ListDocuments returns documents in a collection matching the given queries.
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error)
	// CreateDocument inserts a document with a server-generated unique ID.
	CreateDocument(ctx context.Context, databaseID, collectionID string, data map[string]any) (*Document, error)
	// GetDocument fetches a single document by ID.
	GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*Document, error)
	// UpdateDocument applies a partial field update to a document.
	UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*Document, error)
}

// Document is a stored Appwrite document: its server ID plus user fields.
type Document struct {
	ID   string
	Data map[string]any
}

// UnmarshalJSON splits the flat Appwrite document representation into the
// $id and the non-metadata fields.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Data = make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "$id" {
			if s, ok := v.(string); ok {
				d.ID = s
			}
			continue
		}
		if strings.HasPrefix(k, "$") {
			continue
		}
		d.Data[k] = v
	}
	return nil
}

// GetString returns the named field as a string, or "" when absent or
// not a string.
func (d *Document) GetString(key string) string {
	if d == nil || d.Data == nil {
		return ""
	}
	s, _ := d.Data[key].(string)
	return s
}

// DocumentList is the response of a list call.
type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// EqualQuery builds an equality filter query string.
func EqualQuery(attribute string, value any) string {
	q, _ := json.Marshal(map[string]any{
		"method":    "equal",
		"attribute": attribute,
		"values":    []any{value},
	})
	return string(q)
}

// Option configures the Appwrite client.
type Option func(*httpClient)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL   string
	projectID string
	apiKey    string
	http      *http.Client
}

// NewClient creates a new Appwrite client for the given endpoint,
// project, and API key.
func NewClient(endpoint, projectID, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL:   strings.TrimSuffix(endpoint, "/"),
		projectID: projectID,
		apiKey:    apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do executes a request against the Databases API and decodes the
// response into out (when non-nil).
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return eris.Wrap(err, "appwrite: marshal payload")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return eris.Wrap(err, "appwrite: create request")
	}
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "appwrite: %s %s", method, path)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "appwrite: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("appwrite: %s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "appwrite: unmarshal response")
		}
	}

	return nil
}

func documentsPath(databaseID, collectionID string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
}

func (c *httpClient) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error) {
	q := url.Values{}
	for _, query := range queries {
		q.Add("queries[]", query)
	}

	var list DocumentList
	if err := c.do(ctx, http.MethodGet, documentsPath(databaseID, collectionID), q, nil, &list); err != nil {
		return nil, eris.Wrap(err, "appwrite: list documents")
	}
	return &list, nil
}

func (c *httpClient) CreateDocument(ctx context.Context, databaseID, collectionID string, data map[string]any) (*Document, error) {
	payload := map[string]any{
		"documentId": "unique()",
		"data":       data,
	}

	var doc Document
	if err := c.do(ctx, http.MethodPost, documentsPath(databaseID, collectionID), nil, payload, &doc); err != nil {
		return nil, eris.Wrap(err, "appwrite: create document")
	}
	return &doc, nil
}

func (c *httpClient) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*Document, error) {
	path := documentsPath(databaseID, collectionID) + "/" + documentID

	var doc Document
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &doc); err != nil {
		return nil, eris.Wrapf(err, "appwrite: get document %s", documentID)
	}
	return &doc, nil
}

func (c *httpClient) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*Document, error) {
	path := documentsPath(databaseID, collectionID) + "/" + documentID
	payload := map[string]any{"data": data}

	var doc Document
	if err := c.do(ctx, http.MethodPatch, path, nil, payload, &doc); err != nil {
		return nil, eris.Wrapf(err, "appwrite: update document %s", documentID)
	}
	return &doc, nil
}
