package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/plastinin/aceinterview/internal/config"
)

// S3Storage хранилище видео на базе S3/MinIO
type S3Storage struct {
	client *minio.Client
	bucket string
}

// NewS3Storage создаёт новый экземпляр S3Storage
func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// videoKey ключ вида year/month/day/uuid/filename
func videoKey(now time.Time, fileName string) string {
	return path.Join(
		now.Format("2006"),
		now.Format("01"),
		now.Format("02"),
		uuid.New().String(),
		path.Base(fileName),
	)
}

// Upload загружает видео и возвращает его ключ
func (s *S3Storage) Upload(ctx context.Context, fileName string, contentType string, reader io.Reader, size int64) (string, error) {
	key := videoKey(time.Now(), fileName)

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	return key, nil
}

// Download открывает видео на чтение и возвращает его размер.
// Каждый вызов даёт независимый поток.
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object: %w", err)
	}

	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, info.Size, nil
}

// Delete удаляет видео
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
