package utils

import (
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/nfnt/resize"
)

var ErrUnsupportedImageFormat = errors.New("unsupported image format")

// DecodeImage decodes a jpeg or png and returns the detected format name.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	if format != "jpeg" && format != "png" {
		return nil, "", ErrUnsupportedImageFormat
	}
	return img, format, nil
}

// FitImage scales img down to fit in maxWidth x maxHeight keeping the aspect
// ratio. Images already inside the box are returned unchanged.
func FitImage(img image.Image, maxWidth, maxHeight uint) image.Image {
	bounds := img.Bounds()
	if uint(bounds.Dx()) <= maxWidth && uint(bounds.Dy()) <= maxHeight {
		return img
	}
	return resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)
}

func EncodeImage(img image.Image, format string, writer io.Writer, quality int) error {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(writer, img)
	default:
		return ErrUnsupportedImageFormat
	}
}
