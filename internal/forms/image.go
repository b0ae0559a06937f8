package forms

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

const (
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgEmptyFile    = "The submitted file is empty."
)

var allowedImageTypes = map[string]struct{}{
	"image/gif":  {},
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Upload is a file read from a multipart form.
type Upload struct {
	Filename string
	Data     []byte
}

// ImageFile is an upload that decoded as an image.
type ImageFile struct {
	Filename    string
	ContentType string
	Format      string
	Width       int
	Height      int
	Data        []byte
}

// ValidateImage sniffs and decodes the header of u. maxBytes <= 0 means
// DefaultMaxImageBytes.
func ValidateImage(u *Upload, maxBytes int64) (*ImageFile, string) {
	if len(u.Data) == 0 {
		return nil, msgEmptyFile
	}
	maxBytes = Limits{MaxImageBytes: maxBytes}.ImageBytes()
	if int64(len(u.Data)) > maxBytes {
		return nil, fmt.Sprintf("The file is too large (max %d KB).", maxBytes>>10)
	}

	contentType := http.DetectContentType(u.Data)
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, msgInvalidImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(u.Data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return nil, msgInvalidImage
	}

	return &ImageFile{
		Filename:    u.Filename,
		ContentType: contentType,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Data:        u.Data,
	}, ""
}
