package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ErrArchiveDisabled 未配置对象存储
var ErrArchiveDisabled = errors.New("export archive not configured")

// ArchiveService 导出文件归档到MinIO，返回临时下载链接
type ArchiveService struct {
	minioClient *minio.Client
	bucketName  string
	urlExpiry   time.Duration
	logger      *zap.Logger
}

// NewArchiveService Endpoint为空或客户端创建失败时返回未启用的服务
func NewArchiveService(cfg config.MinIOConfig, logger *zap.Logger) *ArchiveService {
	s := &ArchiveService{bucketName: cfg.Bucket, urlExpiry: cfg.URLExpiry, logger: logger}
	if s.urlExpiry <= 0 {
		s.urlExpiry = time.Hour
	}
	if cfg.Endpoint == "" {
		return s
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Warn("MinIO client init failed, export archive disabled", zap.Error(err))
		return s
	}
	s.minioClient = client
	return s
}

// Enabled 是否启用归档
func (s *ArchiveService) Enabled() bool {
	return s != nil && s.minioClient != nil
}

// EnsureBucket 桶不存在时创建
func (s *ArchiveService) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return ErrArchiveDisabled
	}
	exists, err := s.minioClient.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.minioClient.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	s.logger.Info("Created export bucket", zap.String("bucket", s.bucketName))
	return nil
}

// Store 上传导出文件并填充 file.URL
func (s *ArchiveService) Store(ctx context.Context, file *ExportFile) error {
	if !s.Enabled() {
		return ErrArchiveDisabled
	}
	objectName := fmt.Sprintf("exports/%s/%s-%s", time.Now().Format("2006/01/02"), uuid.New().String(), file.FileName)

	_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, bytes.NewReader(file.Data), int64(len(file.Data)), minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return fmt.Errorf("upload export: %w", err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	u, err := s.minioClient.PresignedGetObject(ctx, s.bucketName, objectName, s.urlExpiry, params)
	if err != nil {
		return fmt.Errorf("presign export: %w", err)
	}
	file.URL = u.String()

	s.logger.Info("Archived export",
		zap.String("object", objectName),
		zap.Int("size", len(file.Data)))
	return nil
}
