// Package localwr provides a local-filesystem implementation of the
// filestore.FileStore interface.
//
// Files are written under a configured root directory, partitioned by upload
// date (year/month/day). Generated filenames combine a nanosecond timestamp
// with a short random suffix, which makes collisions between concurrent
// uploads practically impossible without taking any locks.
package localwr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/rise-and-shine/recipebook/pkg/filestore"
)

// Verify interface compliance at compile time.
var _ filestore.FileStore = (*Store)(nil)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	// randomSuffixLen is the number of hex characters appended to generated names.
	randomSuffixLen = 8
)

// Store implements filestore.FileStore on the local filesystem.
type Store struct {
	root        string
	maxFileSize int64
}

// New creates a local file store rooted at cfg.Root.
// The root directory is created if missing; failure to create it is a
// configuration error and should be fatal to process start.
func New(cfg Config) (*Store, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"root": root}))
	}

	return &Store{
		root:        root,
		maxFileSize: cfg.MaxFileSize,
	}, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string {
	return s.root
}

// Save writes the content of r into a date-partitioned subdirectory under the
// storage root. Basic constraints (non-empty, size ceiling) are re-validated
// here even though callers are expected to have run full validation already.
func (s *Store) Save(_ context.Context, originalName string, r io.Reader) (*filestore.FileInfo, error) {
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

	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, errx.New(
			fmt.Sprintf("file size %d exceeds limit %d", len(data), s.maxFileSize),
			errx.WithCode(filestore.CodeFileTooLarge),
			errx.WithType(errx.T_Validation),
		)
	}

	now := time.Now()
	relDir := filepath.Join(
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
	)

	absDir := filepath.Join(s.root, relDir)
	if err := os.MkdirAll(absDir, dirPerm); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"dir": absDir}))
	}

	ext := strings.ToLower(filepath.Ext(originalName))

	storedName := generateName(ext)
	absPath := filepath.Join(absDir, storedName)

	// A timestamp+random collision is next to impossible; when it happens
	// anyway, a fresh name is generated and tried once more.
	if _, statErr := os.Stat(absPath); statErr == nil {
		storedName = generateName(ext)
		absPath = filepath.Join(absDir, storedName)
	}

	if err := os.WriteFile(absPath, data, filePerm); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"path": absPath}))
	}

	return &filestore.FileInfo{
		StoredName:   storedName,
		OriginalName: originalName,
		AbsolutePath: absPath,
		RelativePath: filepath.ToSlash(filepath.Join(relDir, storedName)),
		MimeType:     http.DetectContentType(data),
		Size:         int64(len(data)),
	}, nil
}

// Load opens the file at relativePath. Paths resolving outside the storage
// root are rejected as not found, never followed.
func (s *Store) Load(_ context.Context, relativePath string) (*filestore.File, error) {
	absPath, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFoundErr(relativePath)
		}
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"path": relativePath}))
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"path": relativePath}))
	}

	return &filestore.File{
		Content: f,
		Info: filestore.FileInfo{
			StoredName:   filepath.Base(absPath),
			AbsolutePath: absPath,
			RelativePath: relativePath,
			MimeType:     filestore.ContentTypeForName(absPath),
			Size:         stat.Size(),
		},
	}, nil
}

// Delete removes the file at relativePath and prunes now-empty parent
// directories up to (never including) the storage root.
// Returns false when the file was already absent.
func (s *Store) Delete(_ context.Context, relativePath string) (bool, error) {
	absPath, err := s.resolve(relativePath)
	if err != nil {
		return false, err
	}

	if err := os.Remove(absPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errx.Wrap(err, errx.WithDetails(errx.D{"path": relativePath}))
	}

	s.pruneEmptyDirs(filepath.Dir(absPath))

	return true, nil
}

// Exists checks if a file exists at relativePath.
func (s *Store) Exists(_ context.Context, relativePath string) (bool, error) {
	absPath, err := s.resolve(relativePath)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errx.Wrap(err, errx.WithDetails(errx.D{"path": relativePath}))
	}
	return true, nil
}

// resolve joins relativePath onto the root and guarantees the result stays
// inside the root.
func (s *Store) resolve(relativePath string) (string, error) {
	absPath := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(relativePath)))

	if absPath != s.root && !strings.HasPrefix(absPath, s.root+string(filepath.Separator)) {
		return "", notFoundErr(relativePath)
	}
	if absPath == s.root {
		return "", notFoundErr(relativePath)
	}

	return absPath, nil
}

// pruneEmptyDirs walks upward from dir removing empty directories until it
// reaches the storage root or a non-empty directory. The root itself is
// never removed.
func (s *Store) pruneEmptyDirs(dir string) {
	for dir != s.root && strings.HasPrefix(dir, s.root) {
		// os.Remove refuses to delete non-empty directories, which
		// terminates the walk naturally.
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func generateName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:randomSuffixLen]
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), suffix, ext)
}

func notFoundErr(relativePath string) error {
	return errx.New(
		"file not found",
		errx.WithCode(filestore.CodeFileNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"path": relativePath}),
	)
}
