package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/common"
)

const defaultTimeout = 30 * time.Second

// HTTPClient implements Client against the registry's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "https://registro.example.com").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// apiError is the {"error": "..."} body the API returns on failure.
type apiError struct {
	Error string `json:"error"`
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, headers map[string]string, body any, target any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, data)
	}

	if target != nil {
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func statusError(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	msg := ae.Error
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrFolioConflict, msg)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", common.ErrValidation, msg)
	default:
		// the server is reachable but cannot serve; reads degrade to cache
		return fmt.Errorf("%w: status %d: %s", common.ErrServerUnavailable, status, msg)
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/options/localidades", nil, nil, nil)
}

func (c *HTTPClient) NextFolio(ctx context.Context) (string, error) {
	var out struct {
		Folio string `json:"folio"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/entries/next-folio", nil, nil, &out); err != nil {
		return "", err
	}
	if out.Folio == "" {
		return "", fmt.Errorf("next-folio returned empty folio")
	}
	return out.Folio, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, data *models.EntryData, idempotencyKey string) (*models.Entry, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	entry := &models.Entry{}
	if err := c.doJSON(ctx, http.MethodPost, "/api/entries", headers, data, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, id string, data *models.EntryData) (*models.Entry, error) {
	entry := &models.Entry{}
	path := "/api/entries/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, data, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/entries/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	entry := &models.Entry{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(id), nil, nil, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (c *HTTPClient) ListEntries(ctx context.Context, limit int, cursor string) ([]*models.Entry, string, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("lastKey", cursor)
	}
	path := "/api/entries"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Entries []*models.Entry `json:"entries"`
		LastKey string          `json:"lastEvaluatedKey"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, "", err
	}
	return out.Entries, out.LastKey, nil
}

func (c *HTTPClient) SearchEntries(ctx context.Context, query string) ([]*models.Entry, error) {
	var out struct {
		Entries []*models.Entry `json:"entries"`
	}
	path := "/api/search?q=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

func (c *HTTPClient) Localities(ctx context.Context) ([]string, error) {
	var out struct {
		Localities []string `json:"localidades"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/options/localidades", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Localities, nil
}

func (c *HTTPClient) ElectoralSections(ctx context.Context) ([]string, error) {
	var out struct {
		Sections []string `json:"secciones"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/options/secciones", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Sections, nil
}
