package archive

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/photoarch/pkg/config"
	"github.com/ilkoid/photoarch/pkg/utils"
)

// Mirror загружает собранное дерево архива в объектное хранилище.
type Mirror struct {
	api    *minio.Client
	bucket string
}

// NewMirror создает клиент, используя наш конфиг
func NewMirror(cfg config.S3Config) (*Mirror, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Mirror{
		api:    minioClient,
		bucket: cfg.Bucket,
	}, nil
}

// Upload рекурсивно заливает localRoot в бакет, сохраняя структуру папок.
// Ключ объекта — относительный путь с прямыми слешами.
func (m *Mirror) Upload(ctx context.Context, localRoot string) error {
	var uploaded int

	err := filepath.WalkDir(localRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(localRoot, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		_, err = m.api.FPutObject(ctx, m.bucket, key, path, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}

		uploaded++
		utils.Debug("Объект загружен", "key", key)
		return nil
	})
	if err != nil {
		return err
	}

	utils.Info("Архив зеркалирован в S3", "bucket", m.bucket, "objects", uploaded)
	return nil
}
