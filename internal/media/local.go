package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalUploader writes files below a directory served by the HTTP router.
type LocalUploader struct {
	dir     string
	baseURL string
	now     func() time.Time
}

// NewLocalUploader creates dir when missing.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("media: local dir is required / 需要本地目录")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create upload dir: %w", err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}, nil
}

func (u *LocalUploader) Driver() string { return DriverLocal }

// Dir returns the root directory, used to mount the static file server.
func (u *LocalUploader) Dir() string { return u.dir }

func (u *LocalUploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	folder = CleanFolder(folder)
	name := UniqueName(filename, contentType, u.now())
	publicID := name
	if folder != "" {
		publicID = folder + "/" + name
	}

	target := filepath.Join(u.dir, filepath.FromSlash(publicID))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Asset{}, fmt.Errorf("media: create folder: %w", err)
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Asset{}, fmt.Errorf("media: create file: %w", err)
	}
	size, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(target)
		if copyErr != nil {
			return Asset{}, fmt.Errorf("media: write file: %w", copyErr)
		}
		return Asset{}, fmt.Errorf("media: close file: %w", closeErr)
	}

	return Asset{
		PublicID:    publicID,
		URL:         u.baseURL + "/" + publicID,
		Folder:      folder,
		ContentType: contentType,
		Size:        size,
		Driver:      DriverLocal,
	}, nil
}

// Delete removes the file; a missing file is not an error.
func (u *LocalUploader) Delete(_ context.Context, publicID string) error {
	root, err := filepath.Abs(u.dir)
	if err != nil {
		return fmt.Errorf("media: resolve dir: %w", err)
	}
	target, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(publicID)))
	if err != nil {
		return fmt.Errorf("media: resolve file: %w", err)
	}
	if !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return fmt.Errorf("media: invalid public id %q", publicID)
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("media: remove file: %w", err)
	}
	return nil
}
