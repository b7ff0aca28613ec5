package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"eventbooking/internal/domain"
)

// LocalUploader writes images below a directory that the HTTP server exposes under /uploads/.
type LocalUploader struct {
	dir     string
	folder  string
	baseURL string
}

// NewLocalUploader creates dir if needed. baseURL defaults to "/uploads".
func NewLocalUploader(dir, folder, baseURL string) (*LocalUploader, error) {
	if dir == "" {
		return nil, fmt.Errorf("local uploader requires a directory")
	}
	if err := os.MkdirAll(filepath.Join(dir, folder), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalUploader{dir: dir, folder: folder, baseURL: baseURL}, nil
}

func (u *LocalUploader) Upload(ctx context.Context, img domain.ImageUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}
	key, err := objectKey(u.folder, img)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}
	dst := filepath.Join(u.dir, filepath.FromSlash(key))
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}
	if _, err := io.Copy(f, img.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("%w: write %s: %w", domain.ErrUpload, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}
	return publicURL(u.baseURL, key), nil
}
