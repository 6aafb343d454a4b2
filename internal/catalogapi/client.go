package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/shopfront/internal/shop"
)

const (
	defaultCatalogAddr = "127.0.0.1:8787"
	defaultCatalogPath = "/data.json"
	defaultUserAgent   = "shopfront/0.1"
	requestTimeout     = 10 * time.Second
)

// Payload is the catalog document served at the catalog URL.
type Payload struct {
	Products []shop.Product `json:"products"`
}

// NetworkError reports a failed catalog fetch: a transport failure, a
// non-2xx status or a body that is not a catalog document.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("catalog %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client fetches the product catalog.
type Client struct {
	url       *url.URL
	http      *http.Client
	userAgent string
}

// NewClient builds a Client for catalogURL. A bare host:port gets the
// http scheme and the /data.json path.
func NewClient(catalogURL string) (*Client, error) {
	u, err := parseCatalogURL(catalogURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		url:       u,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// URL returns the resolved catalog URL.
func (c *Client) URL() string {
	return c.url.String()
}

// FetchProducts downloads the catalog. Any failure is a *NetworkError and
// no partial catalog is returned.
func (c *Client) FetchProducts(ctx context.Context) ([]shop.Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Payload
	if err := c.get(ctx, &payload); err != nil {
		return nil, err
	}
	if payload.Products == nil {
		return nil, &NetworkError{URL: c.URL(), Err: fmt.Errorf("decode response: missing products")}
	}
	return payload.Products, nil
}

func (c *Client) get(ctx context.Context, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url.String(), nil)
	if err != nil {
		return &NetworkError{URL: c.URL(), Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{URL: c.URL(), Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{URL: c.URL(), Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &NetworkError{URL: c.URL(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func parseCatalogURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultCatalogAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse catalog_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse catalog_url %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defaultCatalogPath
	}
	u.Fragment = ""
	return u, nil
}
