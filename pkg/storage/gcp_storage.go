package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCPStorage struct {
	client    *storage.Client
	bucket    string
	cdnDomain string
}

func NewGCPStorage(ctx context.Context, bucket, credentialsFile, cdnDomain string) (*GCPStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP storage client: %w", err)
	}

	return &GCPStorage{
		client:    client,
		bucket:    bucket,
		cdnDomain: cdnDomain,
	}, nil
}

func (g *GCPStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	writer := g.client.Bucket(g.bucket).Object(request.Key).NewWriter(ctx)
	writer.ContentType = request.ContentType

	if len(request.Metadata) > 0 {
		writer.Metadata = request.Metadata
	}

	if request.CacheControl != "" {
		writer.CacheControl = request.CacheControl
	}

	size, err := io.Copy(writer, request.Reader)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write to GCP storage: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	return &UploadResponse{
		Key:  request.Key,
		URL:  g.generateURL(request.Key),
		Size: size,
	}, nil
}

func (g *GCPStorage) Delete(ctx context.Context, key string) error {
	if err := g.client.Bucket(g.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete from GCP storage: %w", err)
	}
	return nil
}

func (g *GCPStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	if g.cdnDomain != "" {
		return g.generateURL(key), nil
	}

	url, err := g.client.Bucket(g.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expiration),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}

	return url, nil
}

func (g *GCPStorage) FileExists(ctx context.Context, key string) (bool, error) {
	_, err := g.client.Bucket(g.bucket).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat GCP object: %w", err)
	}
	return true, nil
}

func (g *GCPStorage) generateURL(key string) string {
	if g.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", g.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key)
}
