// internal/domain/product/source.go
package product

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source provides the raw products.json payload
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// NewSource picks an HTTP or file source from the configured location
func NewSource(location string, client *http.Client) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if client == nil {
			client = &http.Client{Timeout: 15 * time.Second}
		}
		return &HTTPSource{URL: location, Client: client, Now: time.Now}
	}
	return &FileSource{Path: location}
}

// FileSource reads the catalog from the local filesystem
type FileSource struct {
	Path string
}

// Fetch reads the file
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return data, nil
}

func (s *FileSource) String() string { return s.Path }

// HTTPSource downloads the catalog. Every request carries a cache-busting
// "t" parameter so freshly deployed catalogs are never served stale.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Now    func() time.Time
}

// Fetch downloads the catalog
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(s.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}
	return data, nil
}

func (s *HTTPSource) String() string { return s.URL }

// StaticSource serves an in-memory payload
type StaticSource []byte

// Fetch returns the payload
func (s StaticSource) Fetch(ctx context.Context) ([]byte, error) { return s, nil }

func (s StaticSource) String() string { return "static" }
