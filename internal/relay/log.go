package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// LogBackend logs uploads instead of storing them. For local development
// when no image service is configured.
type LogBackend struct {
	logger *slog.Logger
}

// NewLogBackend creates a LogBackend
func NewLogBackend(logger *slog.Logger) *LogBackend {
	return &LogBackend{logger: logger.With("component", "relay.log")}
}

// Upload drains the body and returns a placeholder URL
func (b *LogBackend) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error) {
	written, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	b.logger.Info("upload discarded", "key", key, "content_type", contentType, "size", size, "read", written)

	return fmt.Sprintf("https://storage.example.com/%s", key), nil
}
