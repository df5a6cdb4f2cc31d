package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// PhotoStorage hands out presigned GET URLs for listing photos kept in a
// MinIO/S3 bucket.
type PhotoStorage struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
	logger *logger.Logger
}

// NewPhotoStorage creates the client. With region set, presigning needs no
// round trip to the server.
func NewPhotoStorage(endpoint, accessKey, secretKey, bucket, region string, useSSL bool, ttl time.Duration, log *logger.Logger) (*PhotoStorage, error) {
	log.Info("Initializing S3 photo storage",
		zap.String("endpoint", endpoint),
		zap.String("bucket", bucket),
		zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		log.Error("PhotoStorage: failed to create MinIO client", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	return &PhotoStorage{
		client: client,
		bucket: bucket,
		ttl:    ttl,
		logger: log.Named("PhotoStorage"),
	}, nil
}

// PhotoURLs presigns each key in order. Keys that are already absolute URLs
// are returned unchanged.
func (s *PhotoStorage) PhotoURLs(ctx context.Context, keys []string) ([]string, error) {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
			urls = append(urls, key)
			continue
		}
		u, err := s.client.PresignedGetObject(ctx, s.bucket, strings.TrimPrefix(key, "/"), s.ttl, nil)
		if err != nil {
			s.logger.Error("PhotoStorage: presign failed", zap.String("key", key), zap.Error(err))
			return nil, fmt.Errorf("presign %s/%s: %w", s.bucket, key, err)
		}
		urls = append(urls, u.String())
	}
	return urls, nil
}
