package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/BerniceZTT/works_end/config"
	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 基于MinIO的对象存储
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	timeout   time.Duration
}

// NewMinioStore 根据配置创建对象存储客户端
func NewMinioStore(cfg config.MinIOConfig, timeout time.Duration) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("未配置MinIO地址")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		timeout:   timeout,
	}, nil
}

// EnsureBucket 桶不存在时创建
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	utils.Logger.Info().Str("bucket", s.bucket).Msg("已创建存储桶")
	return nil
}

// Put 上传文件，返回对象ID和访问地址
func (s *MinioStore) Put(ctx context.Context, data []byte, name, mimeType, folder string) (models.StoredObject, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	objectName := ObjectName(folder, name, time.Now())
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return models.StoredObject{}, fmt.Errorf("上传文件失败: %w", err)
	}

	utils.Logger.Debug().
		Str("object", objectName).
		Int("size", len(data)).
		Msg("文件已上传")

	return models.StoredObject{
		ID:  objectName,
		URL: s.publicURL + "/" + objectName,
	}, nil
}

// Delete 删除对象
func (s *MinioStore) Delete(ctx context.Context, id string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

// ObjectName 生成存储路径: folder/2006/01/02/<uuid8>.ext
func ObjectName(folder, fileName string, now time.Time) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join(folder, now.Format("2006/01/02"), uuid.New().String()[:8]+ext)
}
