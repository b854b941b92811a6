// Package miniowr provides a MinIO implementation of the filestore.FileStore interface.
package miniowr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rise-and-shine/recipebook/pkg/filestore"
)

// Verify interface compliance at compile time.
var _ filestore.FileStore = (*Client)(nil)

const codeNoSuchKey = "NoSuchKey"

// Client implements the filestore.FileStore interface using MinIO.
type Client struct {
	client *minio.Client
	bucket string
}

// New creates a new MinIO filestore client.
func New(cfg Config) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Save uploads the content of r under a generated object key partitioned by
// upload date. Content type is detected from the file content.
func (c *Client) Save(ctx context.Context, originalName string, r io.Reader) (*filestore.FileInfo, error) {
	// Read content into buffer to detect content type and get size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if len(data) == 0 {
		return nil, errx.New(
			"file content is empty",
			errx.WithCode(filestore.CodeFileEmpty),
			errx.WithType(errx.T_Validation),
		)
	}

	now := time.Now()
	ext := strings.ToLower(path.Ext(originalName))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	storedName := fmt.Sprintf("%d_%s%s", now.UnixNano(), suffix, ext)

	key := path.Join(
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
		storedName,
	)

	contentType := http.DetectContentType(data)
	size := int64(len(data))

	info, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &filestore.FileInfo{
		StoredName:   storedName,
		OriginalName: originalName,
		RelativePath: key,
		MimeType:     contentType,
		Size:         info.Size,
	}, nil
}

// Load retrieves a file and its metadata from the specified object key.
func (c *Client) Load(ctx context.Context, relativePath string) (*filestore.File, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, relativePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, c.wrapMinioError(err, relativePath)
	}

	return &filestore.File{
		Content: obj,
		Info: filestore.FileInfo{
			StoredName:   path.Base(relativePath),
			RelativePath: relativePath,
			MimeType:     stat.ContentType,
			Size:         stat.Size,
		},
	}, nil
}

// Delete removes an object at the specified key.
// Returns false when the object was already absent.
func (c *Client) Delete(ctx context.Context, relativePath string) (bool, error) {
	// RemoveObject succeeds on missing keys, so check existence first to
	// keep the same return semantics as the local backend.
	exists, err := c.Exists(ctx, relativePath)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if err := c.client.RemoveObject(ctx, c.bucket, relativePath, minio.RemoveObjectOptions{}); err != nil {
		return false, c.wrapMinioError(err, relativePath)
	}
	return true, nil
}

// Exists checks if an object exists at the specified key.
func (c *Client) Exists(ctx context.Context, relativePath string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, relativePath, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == codeNoSuchKey {
			return false, nil
		}
		return false, errx.Wrap(err)
	}
	return true, nil
}

// wrapMinioError converts MinIO errors to filestore error codes.
func (c *Client) wrapMinioError(err error, relativePath string) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == codeNoSuchKey {
		return errx.New(
			"file not found",
			errx.WithCode(filestore.CodeFileNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"path": relativePath}),
		)
	}
	return errx.Wrap(err)
}
