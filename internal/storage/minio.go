package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStore keeps profile images in a MinIO bucket. Records only hold the
// object name; the bucket serves the bytes.
type ImageStore struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func New(ctx context.Context, cfg Config, log *slog.Logger) (*ImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		log.Info("bucket created", "bucket", cfg.Bucket)
	}

	return &ImageStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Upload stores the image under a generated name and returns that name.
// The prefix groups objects per entity ("vendors", "categories", "users").
func (s *ImageStore) Upload(ctx context.Context, prefix, originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))

	objectName := fmt.Sprintf("%s/%s-%d%s", prefix, uuid.NewString()[:8], time.Now().Unix(), ext)

	contentType := "image/jpeg"
	if ext == ".png" {
		contentType = "image/png"
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}

	return objectName, nil
}

func (s *ImageStore) Delete(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

// PresignedURL returns a temporary GET URL (1 hour).
func (s *ImageStore) PresignedURL(ctx context.Context, objectName string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}

	return url.String(), nil
}
