package relay

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

// SupabaseBackend uploads to a public Supabase storage bucket
type SupabaseBackend struct {
	client *supa.Client
	bucket string
}

// NewSupabaseBackend creates a Supabase client for the project URL
func NewSupabaseBackend(url, key, bucket string) (*SupabaseBackend, error) {
	if url == "" || key == "" || bucket == "" {
		return nil, fmt.Errorf("supabase url, key and bucket are required")
	}
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseBackend{client: client, bucket: bucket}, nil
}

// Upload stores the object and returns the bucket's public URL for it.
// storage-go has no context support; ctx is unused.
func (b *SupabaseBackend) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error) {
	upsert := false
	_, err := b.client.Storage.UploadFile(b.bucket, key, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	return b.client.Storage.GetPublicUrl(b.bucket, key).SignedURL, nil
}
