package domain

import (
	"context"
	"io"
	"slices"
)

// Image upload constraints.
const (
	MaxImageSize = 5 * 1024 * 1024
)

// AllowedImageTypes lists the accepted image MIME types, in the order they are reported.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// AllowedImageType reports whether contentType is an accepted image MIME type.
func AllowedImageType(contentType string) bool {
	return slices.Contains(AllowedImageTypes, contentType)
}

// ImageUpload is an image received from a client, already validated.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageUploader stores an image on a media host and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, img ImageUpload) (url string, err error)
}
