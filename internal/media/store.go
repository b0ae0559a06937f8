// Package media stores uploaded post images and their list thumbnails.
package media

import (
	"context"
	"fmt"
	"strings"

	"yatube/internal/config"
)

// Store persists media objects under keys such as "posts/<uuid>.png".
type Store interface {
	Save(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	// URL is where a browser can fetch key.
	URL(key string) string
}

// NewStore builds the backend selected by cfg.MediaBackend.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.MediaBackend) {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}
