// 文件路径: internal/service/upload.go
// 模块说明: 图片上传：校验大小与类型后交给媒体驱动，并在 media_assets 中登记。
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/brinaregal/brina/internal/media"
	"github.com/brinaregal/brina/internal/repository"
)

// Media folders.
const (
	FolderPaymentProofs = "paiements"
	FolderProducts      = "produits"
)

const defaultMaxUploadBytes int64 = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadService 负责图片上传。
type UploadService interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (*media.Asset, error)
	Delete(ctx context.Context, publicID string) error
	MaxBytes() int64
}

type uploadService struct {
	uploader media.Uploader
	assets   repository.MediaAssetRepository
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

func NewUploadService(uploader media.Uploader, assets repository.MediaAssetRepository, maxBytes int64, logger *slog.Logger) UploadService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &uploadService{uploader: uploader, assets: assets, maxBytes: maxBytes, logger: logger.With("component", "upload"), now: time.Now}
}

func (s *uploadService) MaxBytes() int64 { return s.maxBytes }

func (s *uploadService) Upload(ctx context.Context, folder, filename string, r io.Reader) (*media.Asset, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("media uploader not configured / 未配置图床")
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrInvalidFile
	}
	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, ErrInvalidFile
	}

	asset, err := s.uploader.Upload(ctx, folder, filename, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if s.assets != nil {
		if _, err := s.assets.Create(ctx, &repository.MediaAsset{
			PublicID:    asset.PublicID,
			URL:         asset.URL,
			Folder:      asset.Folder,
			ContentType: asset.ContentType,
			Size:        asset.Size,
			Driver:      asset.Driver,
			CreatedAt:   s.now().Unix(),
		}); err != nil {
			s.logger.WarnContext(ctx, "record media asset failed", "public_id", asset.PublicID, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "image uploaded", "folder", asset.Folder, "public_id", asset.PublicID, "size", asset.Size, "driver", asset.Driver)
	return &asset, nil
}

func (s *uploadService) Delete(ctx context.Context, publicID string) error {
	if s.assets != nil {
		if _, err := s.assets.FindByPublicID(ctx, publicID); err != nil {
			return translateNotFound(err)
		}
	}
	if err := s.uploader.Delete(ctx, publicID); err != nil && !errors.Is(err, media.ErrDeleteUnsupported) {
		return err
	}
	if s.assets != nil {
		return translateNotFound(s.assets.DeleteByPublicID(ctx, publicID))
	}
	return nil
}
