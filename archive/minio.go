// Package archive copies generated reports to S3-compatible object storage.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// MinIOArchive uploads finished reports to a bucket.
type MinIOArchive struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOArchive connects to endpoint and makes sure the bucket exists.
func NewMinIOArchive(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Warn().Err(err).Msgf("Failed to check bucket existence for %s (will continue)", bucketName)
	} else if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Error().Err(err).Msgf("Failed to create bucket %s", bucketName)
		} else {
			log.Info().Msgf("Bucket %s created successfully", bucketName)
		}
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucketName).
		Msg("Report archive initialized")

	return &MinIOArchive{client: client, bucketName: bucketName}, nil
}

// ObjectKey is the key a report for eventID is stored under.
func ObjectKey(eventID int64, path string, at time.Time) string {
	return fmt.Sprintf("reports/%d/%s_%s", eventID, at.UTC().Format("20060102T150405"), filepath.Base(path))
}

// Upload stores the file at path and returns its object key.
func (a *MinIOArchive) Upload(ctx context.Context, eventID int64, path string) (string, error) {
	key := ObjectKey(eventID, path, time.Now())
	info, err := a.client.FPutObject(ctx, a.bucketName, key, path, minio.PutObjectOptions{
		ContentType: docxContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	log.Info().
		Str("path", path).
		Str("key", key).
		Int64("size", info.Size).
		Msg("Report archived")

	return key, nil
}

// HealthCheck verifies the bucket is reachable.
func (a *MinIOArchive) HealthCheck(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucketName)
	if err != nil {
		return fmt.Errorf("MinIO health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket '%s' does not exist", a.bucketName)
	}
	return nil
}
