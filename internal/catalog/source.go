package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"CardOptimizer/internal/model"
)

// Source supplies raw catalog rows.
type Source interface {
	Fetch(ctx context.Context) ([]model.CardTemplate, error)
	Name() string
}

// StaticSource returns a fixed row set. Used in tests and for embedded catalogs.
type StaticSource struct {
	Templates []model.CardTemplate
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Fetch(_ context.Context) ([]model.CardTemplate, error) {
	if len(s.Templates) == 0 {
		return nil, dataErrorf(0, "", "static catalog is empty")
	}
	return append([]model.CardTemplate(nil), s.Templates...), nil
}

// FileSource reads a catalog from disk; ".json" files are parsed as a JSON
// feed, everything else as CSV.
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string { return "file:" + f.Path }

func (f *FileSource) Fetch(_ context.Context) ([]model.CardTemplate, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if strings.EqualFold(filepath.Ext(f.Path), ".json") {
		return ParseJSON(data)
	}
	return ParseCSV(bytes.NewReader(data))
}

// HTTPSource downloads a catalog. A JSON content type selects the JSON feed
// parser, anything else is read as CSV.
type HTTPSource struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewHTTPSource creates a source with optional proxy support.
func NewHTTPSource(rawURL, token, proxyURL string) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPSource{
		URL:   rawURL,
		Token: token,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (h *HTTPSource) Name() string { return "http:" + h.URL }

func (h *HTTPSource) Fetch(ctx context.Context) ([]model.CardTemplate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d, body: %s", resp.StatusCode, string(body))
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		return ParseJSON(body)
	}
	return ParseCSV(bytes.NewReader(body))
}
