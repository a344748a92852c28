package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"school-portal/internal/config"
)

const (
	FolderReceipts    = "receipts"
	FolderPhotos      = "profile-photos"
	FolderCredentials = "teacher-credentials"
)

var ErrUnavailable = errors.New("object storage unavailable")

type Service interface {
	// Upload moves a local temp file into object storage and returns its
	// public URL. The local file is removed whether or not the upload works.
	Upload(ctx context.Context, localPath, folder string) (string, error)
}

type objectStore interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type service struct {
	store  objectStore
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func NewService(client *minio.Client, cfg *config.Config, logger *slog.Logger) Service {
	var store objectStore
	if client != nil {
		store = client
	}
	return newService(store, cfg, logger)
}

func newService(store objectStore, cfg *config.Config, logger *slog.Logger) *service {
	return &service{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "storage"),
		now:    time.Now,
	}
}

func (s *service) Upload(ctx context.Context, localPath, folder string) (string, error) {
	defer s.removeTemp(localPath)

	if s.store == nil {
		return "", ErrUnavailable
	}

	ext := strings.ToLower(filepath.Ext(localPath))
	objectName := fmt.Sprintf("%s/%s/%s%s", folder, s.now().Format("2006/01"), uuid.NewString(), ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.store.FPutObject(ctx, s.cfg.MinIOBucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to object storage: %w", err)
	}

	return s.publicURL(objectName), nil
}

func (s *service) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove temp upload", "path", path, "error", err)
	}
}

func (s *service) publicURL(objectName string) string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}

	segments := strings.Split(objectName, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket, strings.Join(segments, "/"))
}
