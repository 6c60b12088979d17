package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/agencybackend/media"
)

type uploadEnv struct {
	root     string
	sessions *stubSessions
	router   http.Handler
}

func newUploadEnv(t *testing.T, maxBytes int64) *uploadEnv {
	t.Helper()
	log := quietLogger()
	root := t.TempDir()

	store, err := media.NewLocalStorage(root, map[media.AssetType]string{
		media.AssetTypeUpload:    "uploads",
		media.AssetTypeThumbnail: "thumbnails",
	}, log)
	require.NoError(t, err)

	env := &uploadEnv{root: root, sessions: &stubSessions{}}
	env.router = NewRouter(Routes{
		Uploads:  NewUploadHandler(media.NewProcessor(store, 200, log), maxBytes, "/api/", log),
		Sessions: env.sessions,
		Assets: map[string]string{
			"uploads":    filepath.Join(root, "uploads"),
			"thumbnails": filepath.Join(root, "thumbnails"),
		},
		Log: log,
	})
	return env
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, height/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type uploadFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, files ...uploadFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (e *uploadEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadImages_StoresAndServes(t *testing.T) {
	env := newUploadEnv(t, 10<<20)
	env.sessions.signIn()

	rec := env.serve(multipartRequest(t,
		uploadFile{name: "portrait.png", data: pngBytes(t, 800, 400)},
		uploadFile{name: "notes.txt", data: []byte("not an image")},
		uploadFile{name: "broken.jpg", data: []byte("not a jpeg either")},
	))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decode(t, rec)["data"].([]interface{})
	require.Len(t, data, 1)
	stored := data[0].(map[string]interface{})
	assert.Equal(t, 800.0, stored["width"])
	assert.Equal(t, 400.0, stored["height"])

	url := stored["url"].(string)
	thumbURL := stored["thumbnailUrl"].(string)
	assert.True(t, strings.HasPrefix(url, "/api/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)
	assert.True(t, strings.HasPrefix(thumbURL, "/api/thumbnails/"), thumbURL)

	rec = env.serve(httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=86400")
	_, err := png.Decode(rec.Body)
	require.NoError(t, err)

	rec = env.serve(httptest.NewRequest(http.MethodGet, thumbURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	thumb, _, err := image.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, thumb.Bounds().Dx())
	assert.Equal(t, 100, thumb.Bounds().Dy())
}

func TestUploadImages_Rejections(t *testing.T) {
	env := newUploadEnv(t, 64<<10)

	rec := env.serve(multipartRequest(t, uploadFile{name: "a.png", data: pngBytes(t, 10, 10)}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.sessions.signIn()

	rec = env.serve(multipartRequest(t, uploadFile{name: "a.txt", data: []byte("text")}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No valid image files uploaded", decode(t, rec)["error"])

	rec = env.serve(multipartRequest(t, uploadFile{name: "huge.png", data: bytes.Repeat([]byte{1}, 128<<10)}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Upload exceeds the size limit", decode(t, rec)["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", strings.NewReader(`{"not":"multipart"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = env.serve(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid multipart upload", decode(t, rec)["error"])

	entries, err := os.ReadDir(filepath.Join(env.root, "uploads"))
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestAssetServer_Paths(t *testing.T) {
	env := newUploadEnv(t, 1<<20)
	uploads := filepath.Join(env.root, "uploads")
	require.NoError(t, os.MkdirAll(filepath.Join(uploads, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "hello.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "secret.txt"), []byte("secret"), 0o644))

	rec := env.serve(httptest.NewRequest(http.MethodGet, "/api/uploads/hello.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "hello", string(body))

	rec = env.serve(httptest.NewRequest(http.MethodGet, "/api/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.serve(httptest.NewRequest(http.MethodGet, "/api/uploads/nested", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.serve(httptest.NewRequest(http.MethodGet, "/api/uploads/nested/../../secret.txt", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}
