package http

import (
	"net/url"
	"path"
	"strings"
	"sync"
)

// assetFile is one uploaded asset held in memory.
type assetFile struct {
	data        []byte
	contentType string
}

// AssetStore holds uploaded asset bytes for the lifetime of the process.
// Uploads never touch disk; the resolver maps slide references to the
// /assets/ URLs this store backs.
type AssetStore struct {
	mu    sync.RWMutex
	files map[string]assetFile
}

// NewAssetStore creates an empty asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{files: make(map[string]assetFile)}
}

// assetKey normalizes an asset reference to its lookup key: the lowercased
// basename with any query or fragment stripped. Matches the resolver's
// keying so a slide field and an upload land on the same entry.
func assetKey(ref string) string {
	ref = strings.TrimSpace(ref)
	for _, sep := range []string{"?", "#"} {
		if i := strings.Index(ref, sep); i >= 0 {
			ref = ref[:i]
		}
	}
	ref = strings.ReplaceAll(ref, "\\", "/")
	return strings.ToLower(path.Base(ref))
}

// Put stores an uploaded file and returns the URL it is served under.
// Re-uploading the same name overwrites.
func (s *AssetStore) Put(name string, data []byte, contentType string) string {
	key := assetKey(name)
	s.mu.Lock()
	s.files[key] = assetFile{data: data, contentType: contentType}
	s.mu.Unlock()
	return "/assets/" + url.PathEscape(key)
}

// Get returns the stored bytes and content type for a reference.
func (s *AssetStore) Get(ref string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[assetKey(ref)]
	if !ok {
		return nil, "", false
	}
	return f.data, f.contentType, true
}

// Bytes returns only the stored bytes, in the shape the embed bridge hooks.
func (s *AssetStore) Bytes(ref string) ([]byte, bool) {
	data, _, ok := s.Get(ref)
	return data, ok
}

// Len returns the number of stored assets.
func (s *AssetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
