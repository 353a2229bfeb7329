package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryBackend uploads to Cloudinary and returns the secure URL
type CloudinaryBackend struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryBackend creates a Cloudinary client from account credentials
func NewCloudinaryBackend(cloudName, apiKey, apiSecret string) (*CloudinaryBackend, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &CloudinaryBackend{cld: cld}, nil
}

// Upload stores the body as folder/name with resource type auto.
// Cloudinary derives the format itself, so the extension is dropped from the public id.
func (b *CloudinaryBackend) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error) {
	name := path.Base(key)
	params := uploader.UploadParams{
		Folder:       path.Dir(key),
		PublicID:     strings.TrimSuffix(name, path.Ext(name)),
		ResourceType: "auto",
	}

	resp, err := b.cld.Upload.Upload(ctx, body, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("cloudinary returned no secure_url")
	}

	return resp.SecureURL, nil
}
