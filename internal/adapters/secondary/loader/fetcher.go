// Package loader loads deck documents and other slide-referenced files from
// local paths or HTTP sources, and carries the built-in demo seed data.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxDocumentSize caps fetched documents at 32MB.
const maxDocumentSize = 32 << 20

// Fetcher loads documents from http(s) URLs or the local filesystem.
// Relative paths resolve under Root.
type Fetcher struct {
	Root   string
	Client *http.Client
}

// NewFetcher creates a fetcher rooted at dir. Empty dir means the working
// directory.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{
		Root:   dir,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch loads the document at src.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return f.fetchHTTP(ctx, src)
	}

	path := strings.TrimPrefix(src, "/")
	if f.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}
	data, err := os.ReadFile(path) // #nosec G304 - paths come from the operator's own deck
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("document %s exceeds size limit", src)
	}
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", src, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", src, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("document %s exceeds size limit", src)
	}
	return data, nil
}
