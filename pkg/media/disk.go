package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore writes uploads under a root directory served at URLPrefix.
type DiskStore struct {
	root      string
	urlPrefix string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save writes to <root>/<folder>/<kind>s/<prefix>-<uuid><ext> and returns its URL path.
func (s *DiskStore) Save(_ context.Context, folder string, up Upload) (string, error) {
	prefix := "media"
	if up.Kind == KindImage {
		prefix = "img"
	}
	name := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), strings.ToLower(filepath.Ext(up.Filename)))
	rel := path.Join(folder, string(up.Kind)+"s", name)

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}
	if err := os.WriteFile(full, up.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write media: %w", err)
	}
	return s.urlPrefix + "/" + rel, nil
}

// Delete removes the file behind url. URLs outside the store are rejected.
func (s *DiskStore) Delete(_ context.Context, url string) error {
	rel := strings.TrimPrefix(url, s.urlPrefix+"/")
	if rel == url || rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("media url %q is not served by this store", url)
	}
	full := filepath.Join(s.root, filepath.FromSlash(path.Clean(rel)))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}
