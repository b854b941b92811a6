package localwr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/pkg/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Root: t.TempDir(), MaxFileSize: 1 << 20})
	require.NoError(t, err)
	return s
}

func TestNew_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := New(Config{Root: root})
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	content := []byte("\xff\xd8\xff\xe0 fake jpeg payload")
	info, err := s.Save(ctx, "photo.jpg", bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "photo.jpg", info.OriginalName)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.True(t, strings.HasSuffix(info.StoredName, ".jpg"))
	assert.NotEqual(t, "photo.jpg", info.StoredName)

	// Stored under a yyyy/mm/dd partition.
	parts := strings.Split(info.RelativePath, "/")
	require.Len(t, parts, 4)
	assert.Len(t, parts[0], 4)
	assert.Len(t, parts[1], 2)
	assert.Len(t, parts[2], 2)

	stored, err := os.ReadFile(info.AbsolutePath)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestSave_UniqueNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 20 {
		info, err := s.Save(ctx, "same.png", bytes.NewReader([]byte("data")))
		require.NoError(t, err)
		assert.False(t, seen[info.RelativePath])
		seen[info.RelativePath] = true
	}
}

func TestSave_Empty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save(context.Background(), "empty.png", bytes.NewReader(nil))
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filestore.CodeFileEmpty))
}

func TestSave_TooLarge(t *testing.T) {
	s, err := New(Config{Root: t.TempDir(), MaxFileSize: 10})
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "big.png", bytes.NewReader(make([]byte, 11)))
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filestore.CodeFileTooLarge))
}

func TestLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	content := []byte("hello file")
	info, err := s.Save(ctx, "note.png", bytes.NewReader(content))
	require.NoError(t, err)

	f, err := s.Load(ctx, info.RelativePath)
	require.NoError(t, err)
	defer f.Content.Close()

	got, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, info.Size, f.Info.Size)
	assert.Equal(t, filestore.ContentTypePNG, f.Info.MimeType)
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "2024/01/01/missing.jpg")
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filestore.CodeFileNotFound))
}

func TestLoad_RootEscape(t *testing.T) {
	s := newTestStore(t)

	// A file outside the root must be unreachable even if it exists.
	outside := filepath.Join(filepath.Dir(s.Root()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	for _, p := range []string{
		"../secret.txt",
		"2024/../../secret.txt",
		"..",
		"",
	} {
		t.Run(fmt.Sprintf("path=%q", p), func(t *testing.T) {
			_, err := s.Load(context.Background(), p)
			require.Error(t, err)
			assert.True(t, errx.IsCodeIn(err, filestore.CodeFileNotFound))
		})
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.Save(ctx, "gone.gif", bytes.NewReader([]byte("GIF89a...")))
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, info.RelativePath)
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err := s.Exists(ctx, info.RelativePath)
	require.NoError(t, err)
	assert.False(t, exists)

	// Second delete reports absence without error.
	deleted, err = s.Delete(ctx, info.RelativePath)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDelete_PrunesEmptyDirs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.Save(ctx, "only.webp", bytes.NewReader([]byte("RIFFxxxxWEBP")))
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, info.RelativePath)
	require.NoError(t, err)
	require.True(t, deleted)

	// The date partition directories become empty and must be gone,
	// while the root itself survives.
	dayDir := filepath.Dir(info.AbsolutePath)
	_, err = os.Stat(dayDir)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(s.Root())
	assert.NoError(t, err)
}

func TestDelete_KeepsNonEmptyDirs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "a.jpg", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	second, err := s.Save(ctx, "b.jpg", bytes.NewReader([]byte("two")))
	require.NoError(t, err)

	_, err = s.Delete(ctx, first.RelativePath)
	require.NoError(t, err)

	exists, err := s.Exists(ctx, second.RelativePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "2024/01/01/nope.png")
	require.NoError(t, err)
	assert.False(t, exists)

	info, err := s.Save(ctx, "yes.png", bytes.NewReader([]byte("content")))
	require.NoError(t, err)

	exists, err = s.Exists(ctx, info.RelativePath)
	require.NoError(t, err)
	assert.True(t, exists)
}
