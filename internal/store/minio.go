package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const reportContentType = "text/markdown"

// ReportStore keeps rendered markdown reports in a MinIO bucket.
type ReportStore struct {
	client *minio.Client
	bucket string
}

func NewReportStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ReportStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &ReportStore{client: client, bucket: bucket}, nil
}

// Put stores a markdown report under the given object key.
func (s *ReportStore) Put(ctx context.Context, key, report string) error {
	reader := strings.NewReader(report)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(report)), minio.PutObjectOptions{
		ContentType: reportContentType,
	})
	return err
}

// Get retrieves a report's markdown source.
func (s *ReportStore) Get(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Remove deletes a stored report.
func (s *ReportStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
