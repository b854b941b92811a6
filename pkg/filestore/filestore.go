// Package filestore provides an abstraction for file storage operations.
//
// It defines a FileStore interface that can be implemented by various
// storage backends (local filesystem, MinIO). The interface is designed
// to be injected into different components across project layers.
package filestore

import (
	"context"
	"io"
)

// FileStore defines the interface for file storage operations.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Save persists the content of r under a generated, collision-resistant
	// name derived from originalName's extension. Returns the stored file info.
	Save(ctx context.Context, originalName string, r io.Reader) (*FileInfo, error)

	// Load retrieves a file and its metadata from the specified relative path.
	// The caller is responsible for closing File.Content.
	Load(ctx context.Context, relativePath string) (*File, error)

	// Delete removes a file at the specified relative path.
	// Returns false (and no error) when the file was already absent.
	Delete(ctx context.Context, relativePath string) (bool, error)

	// Exists checks if a file exists at the specified relative path.
	Exists(ctx context.Context, relativePath string) (bool, error)
}

// File represents a stored file with its content and metadata.
type File struct {
	Content io.ReadCloser
	Info    FileInfo
}

// FileInfo contains metadata about a stored file.
type FileInfo struct {
	// StoredName is the generated filename under which the content is kept.
	StoredName string
	// OriginalName is the client-provided filename.
	OriginalName string
	// AbsolutePath is the backend-specific full path (empty for object storage).
	AbsolutePath string
	// RelativePath locates the file relative to the storage root and is what
	// gets persisted in metadata records.
	RelativePath string
	// MimeType is detected from the file content.
	MimeType string
	// Size is the content length in bytes.
	Size int64
}
