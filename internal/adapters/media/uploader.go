package media

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"eventbooking/internal/domain"
)

// Config selects and configures the media host.
type Config struct {
	Provider      string // "s3" or "local"
	Folder        string
	LocalDir      string
	PublicBaseURL string
	S3            S3Config
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// NewUploader creates an ImageUploader for the configured provider. Unknown providers fall back to local storage.
func NewUploader(logger *slog.Logger, cfg Config) (domain.ImageUploader, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Uploader(cfg.S3, cfg.Folder, cfg.PublicBaseURL)
	case "local", "":
		return NewLocalUploader(cfg.LocalDir, cfg.Folder, cfg.PublicBaseURL)
	default:
		logger.Warn("unknown media provider, using local", "provider", cfg.Provider)
		return NewLocalUploader(cfg.LocalDir, cfg.Folder, cfg.PublicBaseURL)
	}
}

// objectKey returns "<folder>/<nanoid><ext>" for an upload.
func objectKey(folder string, img domain.ImageUpload) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	ext, ok := extensions[img.ContentType]
	if !ok {
		ext = strings.ToLower(path.Ext(img.Filename))
	}
	return path.Join(folder, id+ext), nil
}

// publicURL joins base and key with exactly one slash.
func publicURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
