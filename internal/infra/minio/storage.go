package minio

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveMirror uploads cache archives to <bucket>/<split>/<file>.
type ArchiveMirror struct {
	client *miniogo.Client
	bucket string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

func NewArchiveMirror(cfg StorageConfig) (*ArchiveMirror, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &ArchiveMirror{client: client, bucket: cfg.Bucket}, nil
}

func (m *ArchiveMirror) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", m.bucket, err)
		}
	}
	return nil
}

// ObjectKey is the bucket key an archive at localPath is mirrored to.
func ObjectKey(split entity.Split, localPath string) string {
	return path.Join(string(split), filepath.Base(localPath))
}

func (m *ArchiveMirror) MirrorArchive(ctx context.Context, split entity.Split, localPath string) error {
	_, err := m.client.FPutObject(ctx, m.bucket, ObjectKey(split, localPath), localPath, miniogo.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}
	return nil
}

// FetchArchive downloads a mirrored archive to destPath.
func (m *ArchiveMirror) FetchArchive(ctx context.Context, split entity.Split, fileName, destPath string) error {
	return m.client.FGetObject(ctx, m.bucket, path.Join(string(split), fileName), destPath, miniogo.GetObjectOptions{})
}
