package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"

	"github.com/keranjangku/keranjangku-backend/pkg/config"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

// Client wraps the GCS bucket used for attachment objects. Uploads and
// downloads happen directly between the client and the bucket via signed
// URLs; the API only brokers the URLs and keeps metadata rows.
type Client struct {
	bucket *gcs.BucketHandle
	cfg    config.StorageConfig
}

// NewClient initializes the GCS client for the configured bucket.
func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage bucket is required")
	}

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "storage client initialized")
	}

	return &Client{
		bucket: gcsClient.Bucket(cfg.Bucket),
		cfg:    cfg,
	}, nil
}

// SignedUploadURL returns a time-limited PUT URL for the given object key.
func (c *Client) SignedUploadURL(objectKey, contentType string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", errors.New("object key is required")
	}
	return c.bucket.SignedURL(objectKey, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(c.cfg.SignedURLTTL),
	})
}

// SignedDownloadURL returns a time-limited GET URL for the given object key.
func (c *Client) SignedDownloadURL(objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", errors.New("object key is required")
	}
	return c.bucket.SignedURL(objectKey, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(c.cfg.SignedURLTTL),
	})
}

// Delete removes the object from the bucket. Missing objects are tolerated so
// metadata cleanup can retry safely.
func (c *Client) Delete(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return errors.New("object key is required")
	}
	err := c.bucket.Object(objectKey).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

// MaxUploadSize reports the configured upload ceiling in bytes.
func (c *Client) MaxUploadSize() int64 {
	return c.cfg.MaxUploadSize
}
