package upload

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	return NewValidator(Config{
		MinFileSize: 100,
		MaxFileSize: 1 << 20,
		MinWidth:    1,
		MaxWidth:    5000,
		MinHeight:   1,
		MaxHeight:   5000,
	})
}

// validPNG produces a PNG comfortably above the minimum size bound.
func validPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func validJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func TestValidate_OK(t *testing.T) {
	v := testValidator(t)

	tests := []struct {
		name string
		data []byte
		file string
		mime string
	}{
		{name: "png", data: validPNG(t), file: "photo.png", mime: "image/png"},
		{name: "jpeg", data: validJPEG(t), file: "photo.jpg", mime: "image/jpeg"},
		{name: "jpeg alt ext", data: validJPEG(t), file: "photo.jpeg", mime: "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.data, tt.file, tt.mime, int64(len(tt.data)))
			assert.True(t, res.OK, "errors: %v", res.Errors)
			assert.Empty(t, res.Errors)
		})
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	v := testValidator(t)

	// Empty-ish data, traversal filename, bad mime, bad extension,
	// undecodable content: several independent failures at once.
	data := []byte("x")
	res := v.Validate(data, "../evil.txt", "text/plain", 1)

	assert.False(t, res.OK)
	assert.GreaterOrEqual(t, len(res.Errors), 4)
}

func TestValidate_SizeBounds(t *testing.T) {
	v := testValidator(t)

	res := v.Validate(nil, "photo.png", "image/png", 0)
	assert.False(t, res.OK)
	assert.Contains(t, res.Errors, "file is empty")

	small := validPNG(t)[:50]
	res = v.Validate(small, "photo.png", "image/png", 50)
	assert.False(t, res.OK)

	res = v.Validate(validPNG(t), "photo.png", "image/png", 2<<20)
	assert.False(t, res.OK)
}

func TestValidate_Filename(t *testing.T) {
	v := testValidator(t)
	data := validPNG(t)
	size := int64(len(data))

	tests := []struct {
		name     string
		filename string
	}{
		{name: "traversal", filename: "../../etc/photo.png"},
		{name: "backslash", filename: "dir\\photo.png"},
		{name: "forbidden char", filename: "pho|to.png"},
		{name: "too long", filename: strings.Repeat("a", 300) + ".png"},
		{name: "double extension", filename: "photo.exe.png"},
		{name: "hidden script extension", filename: "photo.php.backup.png"},
		{name: "no extension", filename: "photo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(data, tt.filename, "image/png", size)
			assert.False(t, res.OK, "expected rejection for %q", tt.filename)
		})
	}
}

func TestValidate_SignatureMismatch(t *testing.T) {
	v := testValidator(t)

	// A 500-byte file named photo.png with a JPEG signature and declared
	// MIME image/png must fail on the signature check even though both
	// the extension and the declared MIME type are allowed.
	data := append([]byte{0xFF, 0xD8, 0xFF, 0xD8}, bytes.Repeat([]byte{0x00}, 496)...)
	res := v.Validate(data, "photo.png", "image/png", int64(len(data)))

	assert.False(t, res.OK)

	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "signature") {
			found = true
		}
	}
	assert.True(t, found, "expected a signature-mismatch error, got: %v", res.Errors)
}

func TestValidate_DeclaredMimeMismatchContent(t *testing.T) {
	v := testValidator(t)

	// Real JPEG bytes declared as PNG: signature check catches the lie.
	data := validJPEG(t)
	res := v.Validate(data, "photo.png", "image/png", int64(len(data)))
	assert.False(t, res.OK)
}

func TestValidate_WebPMarker(t *testing.T) {
	v := testValidator(t)

	// RIFF header without the WEBP marker at offset 8.
	data := append([]byte("RIFF\x00\x00\x00\x00AVI "), bytes.Repeat([]byte{0}, 200)...)
	res := v.Validate(data, "clip.webp", "image/webp", int64(len(data)))
	assert.False(t, res.OK)
}

func TestValidate_DimensionBounds(t *testing.T) {
	v := NewValidator(Config{
		MinFileSize: 1,
		MaxFileSize: 1 << 20,
		MinWidth:    200,
		MaxWidth:    5000,
		MinHeight:   1,
		MaxHeight:   60,
	})

	data := validPNG(t) // 100x80
	res := v.Validate(data, "photo.png", "image/png", int64(len(data)))

	assert.False(t, res.OK)
	assert.Len(t, res.Errors, 2) // width below min, height above max
}

func TestNewValidator_DefaultLists(t *testing.T) {
	v := NewValidator(Config{})

	assert.Contains(t, v.Config().AllowedMimeTypes, "image/webp")
	assert.Contains(t, v.Config().AllowedExtensions, "gif")
}
