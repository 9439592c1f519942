package photos

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes photos to a directory and serves them under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("photo directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating photo directory: %w", err)
	}
	if baseURL == "" {
		baseURL = "/photos"
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir is the directory served for photo requests.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	name := objectName(filename)
	target := filepath.Join(s.dir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("error creating photo file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("error writing photo file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}
