package ports

import "context"

// DocumentFetcher defines the interface for fetching external documents
// referenced by slides (embedded HTML, mindmap JSON, deck files). Sources may
// be local paths or http(s) URLs.
type DocumentFetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}
