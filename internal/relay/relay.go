// Package relay forwards uploaded images to a hosted image service and
// returns the public URL.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/foxzi/emailbuilder/internal/metrics"
	"github.com/foxzi/emailbuilder/internal/workspace"
)

var (
	ErrNoFileProvided = errors.New("no file uploaded")
	ErrUploadFailed   = errors.New("image upload failed")
)

// Backend stores an object and returns its public URL
type Backend interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error)
}

// Result is returned to the builder UI after a successful upload
type Result struct {
	URL string `json:"imageUrl"`
}

// Relay stages uploads on local disk and hands them to a Backend
type Relay struct {
	backend  Backend
	provider string
	ws       *workspace.Workspace
	folder   string
	logger   *slog.Logger
}

// New creates a relay. provider only labels logs and metrics.
func New(backend Backend, provider string, ws *workspace.Workspace, folder string, logger *slog.Logger) *Relay {
	if provider == "" {
		provider = "none"
	}
	return &Relay{
		backend:  backend,
		provider: provider,
		ws:       ws,
		folder:   folder,
		logger:   logger.With("component", "relay", "provider", provider),
	}
}

// Upload forwards data to the backend under the configured folder.
// The staged copy is removed whether or not the backend call succeeds.
func (r *Relay) Upload(ctx context.Context, data []byte, fileName string) (*Result, error) {
	if len(data) == 0 {
		metrics.ObserveImageUpload(r.provider, metrics.UploadNoFile, 0, 0)
		return nil, ErrNoFileProvided
	}

	start := time.Now()

	staged, err := r.ws.StageUpload(fileName, data)
	if err != nil {
		r.observe(metrics.UploadFailed, len(data), start)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer func() {
		if err := r.ws.Remove(staged); err != nil {
			r.logger.Error("failed to remove staged upload", "path", staged, "error", err)
		}
	}()

	f, err := r.ws.Open(staged)
	if err != nil {
		r.observe(metrics.UploadFailed, len(data), start)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		r.observe(metrics.UploadFailed, len(data), start)
		return nil, fmt.Errorf("%w: detect content type: %w", ErrUploadFailed, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		r.observe(metrics.UploadFailed, len(data), start)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	key := r.objectKey(fileName, mtype)

	url, err := r.backend.Upload(ctx, key, f, mtype.String(), int64(len(data)))
	if err != nil {
		r.observe(metrics.UploadFailed, len(data), start)
		r.logger.Error("backend upload failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	r.observe(metrics.UploadSuccess, len(data), start)
	r.logger.Info("image uploaded", "key", key, "content_type", mtype.String(), "size", len(data))

	return &Result{URL: url}, nil
}

// objectKey places the object in the folder under a random name, keeping the
// client's extension when it has one.
func (r *Relay) objectKey(fileName string, mtype *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = mtype.Extension()
	}
	return path.Join(r.folder, uuid.NewString()+ext)
}

func (r *Relay) observe(result string, size int, start time.Time) {
	metrics.ObserveImageUpload(r.provider, result, int64(size), time.Since(start).Seconds())
}
