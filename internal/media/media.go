// 文件路径: internal/media/media.go
// 模块说明: 图片上传抽象，支付凭证与菜品图片共用。
package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DriverLocal      = "local"
	DriverCloudinary = "cloudinary"
)

var (
	// ErrDeleteUnsupported is returned when the driver has no credentials to delete assets.
	ErrDeleteUnsupported = errors.New("media: delete not supported / 当前驱动不支持删除")
	// ErrCircuitOpen is returned while the media host is considered unavailable.
	ErrCircuitOpen = errors.New("media: upstream unavailable / 图床暂不可用")
	// ErrRejected marks a request the media host refused (4xx).
	ErrRejected = errors.New("media: upload rejected / 上传被拒绝")
)

// Asset 描述一次上传成功后的文件。
type Asset struct {
	PublicID    string `json:"public_id"`
	URL         string `json:"url"`
	Folder      string `json:"folder"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Driver      string `json:"driver"`
}

// Uploader stores image files and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Asset, error)
	Delete(ctx context.Context, publicID string) error
	Driver() string
}

var contentTypeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UniqueName builds "<uuid>_<unix>.<ext>", taking the extension from filename
// and falling back to the content type.
func UniqueName(filename, contentType string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 6 {
		ext = contentTypeExt[contentType]
	}
	if ext == "" {
		ext = ".bin"
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return uuid.NewString() + "_" + strconv.FormatInt(now.Unix(), 10) + ext
}

// CleanFolder keeps lowercase letters, digits, '-' and '_' in each segment.
func CleanFolder(folder string) string {
	parts := strings.Split(folder, "/")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		var b strings.Builder
		for _, r := range strings.ToLower(part) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			kept = append(kept, b.String())
		}
	}
	return strings.Join(kept, "/")
}
