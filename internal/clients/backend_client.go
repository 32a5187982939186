package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const maxResponseBytes = 32 << 20

// Response is a backend reply captured verbatim.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type BackendClient interface {
	// Forward sends method+path (with rawQuery) to the backend and returns
	// its reply without interpretation.
	Forward(ctx context.Context, method, path, rawQuery, contentType string, body io.Reader) (*Response, error)
	SearchImages(ctx context.Context, geometry []byte) (*Response, error)
	GetImage(ctx context.Context, catalogID string) (*Response, error)
	CreateOrder(ctx context.Context, catalogID string) (*Response, error)
	ListOrders(ctx context.Context, query url.Values) (*Response, error)
}

type backendClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackendClient(baseURL string, timeout time.Duration) BackendClient {
	return &backendClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *backendClient) Forward(ctx context.Context, method, path, rawQuery, contentType string, body io.Reader) (*Response, error) {
	target := c.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Orbital-Edge-Proxy/1.0")
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (c *backendClient) SearchImages(ctx context.Context, geometry []byte) (*Response, error) {
	return c.Forward(ctx, http.MethodPost, "/api/images/search", "", "application/json", bytes.NewReader(geometry))
}

func (c *backendClient) GetImage(ctx context.Context, catalogID string) (*Response, error) {
	return c.Forward(ctx, http.MethodGet, "/api/images/"+url.PathEscape(catalogID), "", "", nil)
}

func (c *backendClient) CreateOrder(ctx context.Context, catalogID string) (*Response, error) {
	payload, err := json.Marshal(map[string]string{"catalogId": catalogID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	return c.Forward(ctx, http.MethodPost, "/api/orders", "", "application/json", bytes.NewReader(payload))
}

func (c *backendClient) ListOrders(ctx context.Context, query url.Values) (*Response, error) {
	return c.Forward(ctx, http.MethodGet, "/api/orders", query.Encode(), "", nil)
}
