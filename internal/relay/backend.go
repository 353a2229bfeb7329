package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/foxzi/emailbuilder/internal/config"
)

// ErrNoProvider is returned by every upload when no image provider is configured
var ErrNoProvider = errors.New("no image provider configured")

// NewBackend creates the backend selected by cfg.Provider.
// An empty provider yields a backend that rejects every upload.
func NewBackend(cfg config.ImagesConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Provider {
	case config.ImageProviderCloudinary:
		c := cfg.Cloudinary
		return NewCloudinaryBackend(c.CloudName, c.APIKey, c.APISecret)
	case config.ImageProviderS3:
		s := cfg.S3
		return NewS3Backend(s.Endpoint, s.Bucket, s.AccessKey, s.SecretKey, s.PublicURL, s.Region)
	case config.ImageProviderSupabase:
		s := cfg.Supabase
		return NewSupabaseBackend(s.URL, s.Key, s.Bucket)
	case config.ImageProviderLog:
		return NewLogBackend(logger), nil
	case "":
		logger.Warn("no image provider configured, image uploads will fail")
		return unconfiguredBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Provider)
	}
}

type unconfiguredBackend struct{}

func (unconfiguredBackend) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error) {
	return "", ErrNoProvider
}
