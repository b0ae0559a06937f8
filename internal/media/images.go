package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path"
	"strings"

	"yatube/internal/middleware"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	ThumbWidth   = 960
	ThumbHeight  = 339
	thumbQuality = 80
)

var extensions = map[string]string{
	"image/gif":  ".gif",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Stored holds the keys written for one upload. Thumb is empty when no
// thumbnail could be produced.
type Stored struct {
	Image string
	Thumb string
}

// ImageSaver stores a post image and a cropped WebP thumbnail next to it.
type ImageSaver struct {
	store  Store
	prefix string
}

func NewImageSaver(store Store) *ImageSaver {
	return &ImageSaver{store: store, prefix: "posts"}
}

func (s *ImageSaver) Store() Store {
	return s.store
}

// Save writes the original under a fresh key. A thumbnail failure is logged
// and leaves Thumb empty.
func (s *ImageSaver) Save(ctx context.Context, contentType string, data []byte) (Stored, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return Stored{}, fmt.Errorf("unsupported image type %q", contentType)
	}

	id := uuid.NewString()
	stored := Stored{Image: path.Join(s.prefix, id+ext)}
	if err := s.store.Save(ctx, stored.Image, contentType, data); err != nil {
		return Stored{}, err
	}

	thumb, err := Thumbnail(data, ThumbWidth, ThumbHeight)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "thumbnail skipped", slog.String("image", stored.Image), slog.String("error", err.Error()))
		return stored, nil
	}
	thumbKey := path.Join(s.prefix, "thumbs", id+".webp")
	if err := s.store.Save(ctx, thumbKey, "image/webp", thumb); err != nil {
		middleware.Logger.WarnContext(ctx, "thumbnail upload failed", slog.String("image", stored.Image), slog.String("error", err.Error()))
		return stored, nil
	}
	stored.Thumb = thumbKey
	return stored, nil
}

// Remove deletes both keys of a previous upload, ignoring empty ones.
func (s *ImageSaver) Remove(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err := s.store.Delete(ctx, k); err != nil {
			middleware.Logger.WarnContext(ctx, "media delete failed", slog.String("key", k), slog.String("error", err.Error()))
		}
	}
}

// Thumbnail center-crops data to the w:h aspect ratio, scales it to w x h and encodes WebP.
func Thumbnail(data []byte, w, h int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	crop := centerCrop(src.Bounds(), w, h)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// centerCrop returns the largest rectangle of aspect w:h centered in b.
func centerCrop(b image.Rectangle, w, h int) image.Rectangle {
	bw, bh := b.Dx(), b.Dy()
	if bw*h > bh*w {
		cw := bh * w / h
		x0 := b.Min.X + (bw-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := bw * h / w
	if ch < 1 {
		ch = 1
	}
	y0 := b.Min.Y + (bh-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}
