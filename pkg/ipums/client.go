// Package ipums provides a client for the IPUMS extract API (v2).
package ipums

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultBaseURL    = "https://api.ipums.org"
	defaultCollection = "cps"
	apiVersion        = "2"
)

// Client defines the IPUMS extract operations.
type Client interface {
	// SubmitExtract creates a new extract and returns its number.
	SubmitExtract(ctx context.Context, req ExtractRequest) (int, error)
	// ExtractStatus fetches the current state of an extract.
	ExtractStatus(ctx context.Context, number int) (*Extract, error)
	// WaitForCompletion polls until the extract reaches a terminal state.
	WaitForCompletion(ctx context.Context, number int, interval time.Duration) (*Extract, error)
	// DownloadData streams the extract's data file to w, transparently
	// gunzipping .gz payloads.
	DownloadData(ctx context.Context, ext *Extract, w io.Writer) error
}

// ExtractRequest describes the extract to create.
type ExtractRequest struct {
	Description string
	Samples     []string
	Variables   []string
	DataFormat  string // "csv" or "fixed_width"; defaults to "csv"
}

// Extract is the API's view of an extract.
type Extract struct {
	Number        int           `json:"number"`
	Status        string        `json:"status"`
	DownloadLinks DownloadLinks `json:"downloadLinks"`
}

// DownloadLinks holds the download URLs attached to a completed extract.
type DownloadLinks struct {
	Data DownloadLink `json:"data"`
}

// DownloadLink is a single downloadable artifact.
type DownloadLink struct {
	URL string `json:"url"`
}

// Terminal extract statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// Done reports whether the extract has reached a terminal state.
func (e *Extract) Done() bool {
	switch e.Status {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithCollection sets the IPUMS collection (default "cps").
func WithCollection(collection string) Option {
	return func(c *httpClient) { c.collection = collection }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey     string
	baseURL    string
	collection string
	http       *http.Client
}

// NewClient creates an IPUMS API client. The key goes into the
// Authorization header on every request.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		collection: defaultCollection,
		http: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// extractPayload is the wire shape of a create-extract request. Samples
// and variables are objects keyed by name with empty bodies.
type extractPayload struct {
	Description   string                    `json:"description"`
	DataFormat    string                    `json:"dataFormat"`
	DataStructure map[string]map[string]any `json:"dataStructure"`
	Samples       map[string]struct{}       `json:"samples"`
	Variables     map[string]struct{}       `json:"variables"`
}

func (c *httpClient) SubmitExtract(ctx context.Context, req ExtractRequest) (int, error) {
	format := req.DataFormat
	if format == "" {
		format = "csv"
	}
	payload := extractPayload{
		Description: req.Description,
		DataFormat:  format,
		// Person-level rectangular records.
		DataStructure: map[string]map[string]any{"rectangular": {"on": "P"}},
		Samples:       make(map[string]struct{}, len(req.Samples)),
		Variables:     make(map[string]struct{}, len(req.Variables)),
	}
	for _, s := range req.Samples {
		payload.Samples[s] = struct{}{}
	}
	for _, v := range req.Variables {
		payload.Variables[v] = struct{}{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, eris.Wrap(err, "ipums: marshal extract payload")
	}

	url := fmt.Sprintf("%s/extracts?collection=%s&version=%s", c.baseURL, c.collection, apiVersion)
	var resp Extract
	if err := c.doJSON(ctx, http.MethodPost, url, bytes.NewReader(body), &resp); err != nil {
		return 0, err
	}
	if resp.Number == 0 {
		return 0, eris.New("ipums: submit response without an extract number")
	}

	zap.L().Info("extract submitted",
		zap.Int("number", resp.Number),
		zap.Strings("samples", req.Samples),
		zap.Strings("variables", req.Variables),
	)
	return resp.Number, nil
}

func (c *httpClient) ExtractStatus(ctx context.Context, number int) (*Extract, error) {
	url := fmt.Sprintf("%s/extracts/%d?collection=%s&version=%s", c.baseURL, number, c.collection, apiVersion)
	var ext Extract
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &ext); err != nil {
		return nil, err
	}
	if ext.Number == 0 {
		ext.Number = number
	}
	return &ext, nil
}

func (c *httpClient) WaitForCompletion(ctx context.Context, number int, interval time.Duration) (*Extract, error) {
	if interval <= 0 {
		interval = 8 * time.Second
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "ipums: wait for extract")
		case <-t.C:
		}

		ext, err := c.ExtractStatus(ctx, number)
		if err != nil {
			// Transient status-check failures keep the poll alive.
			zap.L().Warn("extract status check failed, retrying", zap.Int("number", number), zap.Error(err))
			continue
		}
		zap.L().Info("extract status", zap.Int("number", number), zap.String("status", ext.Status))

		if ext.Done() {
			if ext.Status != StatusCompleted {
				return ext, eris.Errorf("ipums: extract %d ended with status %q", number, ext.Status)
			}
			return ext, nil
		}
	}
}

func (c *httpClient) DownloadData(ctx context.Context, ext *Extract, w io.Writer) error {
	url := ext.DownloadLinks.Data.URL
	if url == "" {
		return eris.Errorf("ipums: extract %d has no data download link", ext.Number)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "ipums: create download request")
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "ipums: download data")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("ipums: download returned status %d", resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if strings.HasSuffix(url, ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return eris.Wrap(err, "ipums: open gzip stream")
		}
		defer gz.Close() //nolint:errcheck
		r = gz
	}

	if _, err := io.Copy(w, r); err != nil {
		return eris.Wrap(err, "ipums: write data")
	}
	return nil
}

// doJSON performs a request with auth headers and decodes a JSON response.
func (c *httpClient) doJSON(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return eris.Wrap(err, "ipums: create request")
	}
	req.Header.Set("Authorization", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "ipums: %s %s", method, url)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return eris.Errorf("ipums: %s %s returned status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "ipums: decode response")
	}
	return nil
}
