package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"yatube/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{B: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalStore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := NewLocalStore(root, "/media")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "posts/a.png", "image/png", []byte("data")))
	got, err := os.ReadFile(filepath.Join(root, "posts", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
	assert.Equal(t, "/media/posts/a.png", s.URL("posts/a.png"))
	assert.Empty(t, s.URL(""))

	require.NoError(t, s.Delete(ctx, "posts/a.png"))
	require.NoError(t, s.Delete(ctx, "posts/a.png"))
	_, err = os.Stat(filepath.Join(root, "posts", "a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, s.Save(ctx, "../escape.png", "image/png", []byte("x")))
	assert.Error(t, s.Save(ctx, "", "image/png", []byte("x")))
}

func TestThumbnail(t *testing.T) {
	t.Parallel()

	thumb, err := Thumbnail(pngBytes(t, 1200, 800), ThumbWidth, ThumbHeight)
	require.NoError(t, err)

	cfg, err := xwebp.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, ThumbWidth, cfg.Width)
	assert.Equal(t, ThumbHeight, cfg.Height)

	_, err = Thumbnail([]byte("not an image"), ThumbWidth, ThumbHeight)
	assert.Error(t, err)
}

func TestCenterCrop(t *testing.T) {
	t.Parallel()

	wide := centerCrop(image.Rect(0, 0, 2000, 339), 960, 339)
	assert.Equal(t, 339, wide.Dy())
	assert.Equal(t, 960, wide.Dx())
	assert.Equal(t, 520, wide.Min.X)

	tall := centerCrop(image.Rect(0, 0, 960, 1000), 960, 339)
	assert.Equal(t, 960, tall.Dx())
	assert.Equal(t, 339, tall.Dy())
}

func TestImageSaver(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	saver := NewImageSaver(NewLocalStore(root, "/media/"))
	ctx := context.Background()

	stored, err := saver.Save(ctx, "image/png", pngBytes(t, 300, 200))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Image, "posts/"))
	assert.True(t, strings.HasSuffix(stored.Image, ".png"))
	assert.True(t, strings.HasPrefix(stored.Thumb, "posts/thumbs/"))

	for _, key := range []string{stored.Image, stored.Thumb} {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(key)))
		assert.NoError(t, err, key)
	}

	saver.Remove(ctx, stored.Image, stored.Thumb, "")
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(stored.Image)))
	assert.True(t, os.IsNotExist(err))

	_, err = saver.Save(ctx, "text/plain", []byte("x"))
	assert.Error(t, err)
}

func TestS3Store(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		requests = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests[r.Method+" "+r.URL.Path] = r.Header.Get("Content-Type") + "|" + string(body)
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:    "yatube",
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "posts/a.png", "image/png", []byte("png-bytes")))
	require.NoError(t, store.Delete(context.Background(), "posts/a.png"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "image/png|png-bytes", requests["PUT /yatube/posts/a.png"])
	assert.Contains(t, requests, "DELETE /yatube/posts/a.png")
	assert.Equal(t, srv.URL+"/yatube/posts/a.png", store.URL("posts/a.png"))
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	s, err := NewStore(context.Background(), &config.Config{MediaBackend: "local", MediaRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = NewStore(context.Background(), &config.Config{MediaBackend: "s3"})
	assert.Error(t, err)

	_, err = NewStore(context.Background(), &config.Config{MediaBackend: "ftp"})
	assert.Error(t, err)
}
