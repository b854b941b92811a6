package filestore

import (
	"path/filepath"
	"strings"
)

// Common MIME content types for file operations.
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"

	ContentTypeOctetStream = "application/octet-stream"
)

// ContentTypeForName infers a MIME content type from a filename extension.
// Unknown extensions map to application/octet-stream.
func ContentTypeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return ContentTypeJPEG
	case ".png":
		return ContentTypePNG
	case ".gif":
		return ContentTypeGIF
	case ".webp":
		return ContentTypeWebP
	default:
		return ContentTypeOctetStream
	}
}
