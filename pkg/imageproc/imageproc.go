// Package imageproc provides image dimension probing and resizing helpers.
//
// Decoders are registered for JPEG, PNG, GIF and WebP, matching the formats
// accepted by the upload pipeline.
package imageproc

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	// Register decoders for the supported upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/code19m/errx"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Size names a resized image variant.
type Size string

const (
	Original Size = "original"
	Medium   Size = "medium"
	Small    Size = "small"
)

// Variant widths in pixels. Height follows the aspect ratio.
const (
	mediumWidth = 800
	smallWidth  = 300
)

// Error codes for image processing operations.
const (
	CodeImageUndecodable = "IMAGE_UNDECODABLE"
	CodeResizeFailed     = "IMAGE_RESIZE_FAILED"
)

// ParseSize maps a user-supplied variant name to a Size.
// Empty and unknown values fall back to the original.
func ParseSize(s string) Size {
	switch strings.ToLower(s) {
	case string(Medium):
		return Medium
	case string(Small):
		return Small
	default:
		return Original
	}
}

// Dimensions reports the pixel width and height of the encoded image in data
// without decoding the full pixel raster.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, errx.Wrap(err,
			errx.WithCode(CodeImageUndecodable),
			errx.WithType(errx.T_Validation),
		)
	}
	return cfg.Width, cfg.Height, nil
}

// Resize decodes data and produces a variant scaled to the given size,
// re-encoded in the format implied by ext. The original size returns the
// input unchanged.
func Resize(data []byte, size Size, ext string) ([]byte, error) {
	if size == Original {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errx.Wrap(err,
			errx.WithCode(CodeImageUndecodable),
			errx.WithType(errx.T_Validation),
		)
	}

	width := mediumWidth
	if size == Small {
		width = smallWidth
	}

	// Never upscale: a source narrower than the variant stays as is.
	if img.Bounds().Dx() <= width {
		return data, nil
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := encode(buf, resized, ext); err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeResizeFailed))
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, img image.Image, ext string) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return png.Encode(buf, img)
	default:
		// GIF and WebP variants are re-encoded as JPEG. Animated inputs
		// lose animation in resized variants, the original is untouched.
		return jpeg.Encode(buf, img, nil)
	}
}
