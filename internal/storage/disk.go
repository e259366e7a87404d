// Package storage stores uploaded media on local disk and returns the URL
// it will be served under.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store writes the bytes under a timestamp-prefixed name and returns the
// serving URL.
func (s *DiskStore) Store(data []byte, suggestedName string) (string, error) {
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), sanitizeExt(suggestedName))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Remove deletes a previously stored file given its serving URL. URLs
// outside this store are ignored.
func (s *DiskStore) Remove(url string) error {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return nil
	}
	return os.Remove(filepath.Join(s.dir, path.Base(url)))
}

// Dir returns the directory files are written to, for static serving.
func (s *DiskStore) Dir() string {
	return s.dir
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(path.Ext(path.Base(name)))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
