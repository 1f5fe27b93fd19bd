package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store fetches lecture video objects from S3-compatible storage when the
// worker finds no local copy.
type Store struct {
	client *minio.Client
	bucket string
}

func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

// DownloadToTemp streams the object into a temporary local file and returns
// its path. The caller owns the file and must remove it.
func (s *Store) DownloadToTemp(ctx context.Context, objectName string) (string, error) {
	objectName = strings.TrimPrefix(objectName, "/")

	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("s3 get object: %w", err)
	}
	defer obj.Close()

	tmp, err := os.CreateTemp("", "lecture-video-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, obj); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("s3 download %q: %w", objectName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
