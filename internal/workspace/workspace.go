// Package workspace holds the local files the service produces: staged image
// uploads and rendered template artifacts.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Workspace manages the upload and download directories on a filesystem
type Workspace struct {
	fs          afero.Fs
	uploadDir   string
	downloadDir string
}

// New creates a workspace on fs. Directories are created on first use.
func New(fs afero.Fs, uploadDir, downloadDir string) *Workspace {
	return &Workspace{
		fs:          fs,
		uploadDir:   uploadDir,
		downloadDir: downloadDir,
	}
}

// NewOS creates a workspace on the local disk
func NewOS(uploadDir, downloadDir string) *Workspace {
	return New(afero.NewOsFs(), uploadDir, downloadDir)
}

// StageUpload writes data to a new temporary file in the upload directory
// and returns its path. The original file name only contributes its extension.
func (w *Workspace) StageUpload(name string, data []byte) (string, error) {
	if err := w.fs.MkdirAll(w.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	f, err := afero.TempFile(w.fs, w.uploadDir, "upload-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		w.fs.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		w.fs.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return f.Name(), nil
}

// WriteArtifact writes a rendered template into the download directory under
// a unique name and returns its path.
func (w *Workspace) WriteArtifact(data []byte) (string, error) {
	if err := w.fs.MkdirAll(w.downloadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	path := filepath.Join(w.downloadDir, uuid.NewString()+".html")
	if err := afero.WriteFile(w.fs, path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	return path, nil
}

// Open opens a file previously created by the workspace
func (w *Workspace) Open(path string) (afero.File, error) {
	return w.fs.Open(path)
}

// Remove deletes a file. A file that is already gone is not an error.
func (w *Workspace) Remove(path string) error {
	if err := w.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether path is present
func (w *Workspace) Exists(path string) bool {
	ok, _ := afero.Exists(w.fs, path)
	return ok
}

// UploadDir returns the staging directory
func (w *Workspace) UploadDir() string {
	return w.uploadDir
}

// DownloadDir returns the artifact directory
func (w *Workspace) DownloadDir() string {
	return w.downloadDir
}
