package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestStore(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewLocalStorage(root, map[AssetType]string{
		AssetTypeUpload:    "uploads",
		AssetTypeThumbnail: "thumbnails",
	}, quietLogger())
	require.NoError(t, err)
	return store, root
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		img.Set(width/2, y, color.RGBA{G: 180, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestIsRasterImage(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.gif", "e.webp"} {
		assert.True(t, IsRasterImage(name), name)
	}
	for _, name := range []string{"a.txt", "b", "c.heic", "d.jpg.exe"} {
		assert.False(t, IsRasterImage(name), name)
	}
}

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxSize       int
		wantW, wantH  int
	}{
		{"landscape", 800, 400, 200, 200, 100},
		{"portrait", 300, 900, 300, 100, 300},
		{"square", 1000, 1000, 400, 400, 400},
		{"already small", 120, 80, 400, 120, 80},
		{"thin strip", 4000, 3, 400, 400, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := thumbnailSize(image.Rect(0, 0, tt.width, tt.height), tt.maxSize)
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}

	_, _, err := thumbnailSize(image.Rect(0, 0, 0, 10), 400)
	assert.Error(t, err)
}

func TestProcessUpload(t *testing.T) {
	store, root := newTestStore(t)
	processor := NewProcessor(store, 100, quietLogger())

	stored, err := processor.ProcessUpload("Portrait.JPEG", bytes.NewReader(jpegBytes(t, 300, 600)))
	require.NoError(t, err)

	assert.Equal(t, 300, stored.Width)
	assert.Equal(t, 600, stored.Height)
	assert.True(t, strings.HasPrefix(stored.OriginalPath, "uploads/"), stored.OriginalPath)
	assert.True(t, strings.HasSuffix(stored.OriginalPath, ".jpg"), stored.OriginalPath)
	assert.True(t, strings.HasPrefix(stored.ThumbnailPath, "thumbnails/"), stored.ThumbnailPath)

	f, err := os.Open(filepath.Join(root, filepath.FromSlash(stored.ThumbnailPath)))
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 100, cfg.Height)

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(stored.OriginalPath)))
	assert.NoError(t, err)
}

func TestProcessUpload_Rejects(t *testing.T) {
	store, root := newTestStore(t)
	processor := NewProcessor(store, 100, quietLogger())

	_, err := processor.ProcessUpload("notes.txt", strings.NewReader("hello"))
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	_, err = processor.ProcessUpload("fake.png", strings.NewReader("not really a png"))
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	_, err = os.Stat(filepath.Join(root, "uploads"))
	assert.True(t, os.IsNotExist(err), "nothing is written for rejected uploads")
}

func TestLocalStorage_Paths(t *testing.T) {
	store, root := newTestStore(t)

	rel, err := store.Save(AssetTypeUpload, "a.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/a.png", rel)

	full, err := store.GetFullPath(rel)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "uploads", "a.png"), full)

	_, err = store.Save(AssetTypeUpload, "../escape.png", strings.NewReader("data"))
	assert.Error(t, err)
	_, err = store.Save(AssetType("unknown"), "a.png", strings.NewReader("data"))
	assert.Error(t, err)
	_, err = store.GetFullPath("../../etc/passwd")
	assert.Error(t, err)

	require.NoError(t, store.Delete(rel))
	require.NoError(t, store.Delete(rel), "deleting a missing file is not an error")
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
}

func TestNewLocalStorage_RejectsEscapingSubDir(t *testing.T) {
	_, err := NewLocalStorage(t.TempDir(), map[AssetType]string{AssetTypeUpload: "../outside"}, quietLogger())
	assert.Error(t, err)

	_, err = NewLocalStorage(t.TempDir(), map[AssetType]string{AssetTypeUpload: "."}, quietLogger())
	assert.Error(t, err)
}
