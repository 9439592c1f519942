// Package photos stores result proof photos and hands back opaque URLs.
// The league core only ever sees the URL string.
package photos

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/dominikpree-ux/scolia-180-league/internal/config"
)

type Store interface {
	// Save writes the photo and returns a URL for it.
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// NewFromConfig selects the configured backend.
func NewFromConfig(cfg config.PhotosConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.Directory, cfg.BaseURL)
	case "s3":
		return NewS3Store(cfg.Bucket, cfg.Region)
	}
	return nil, fmt.Errorf("unsupported photos backend: %s", cfg.Backend)
}

// objectName builds a collision-free name preserving the upload's extension.
func objectName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic":
	default:
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}
