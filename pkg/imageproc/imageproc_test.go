package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		w, h int
	}{
		{name: "png", data: makePNG(t, 120, 80), w: 120, h: 80},
		{name: "jpeg", data: makeJPEG(t, 64, 48), w: 64, h: 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := Dimensions(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestDimensions_Undecodable(t *testing.T) {
	_, _, err := Dimensions([]byte("this is not an image"))
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, CodeImageUndecodable))
}

func TestResize(t *testing.T) {
	src := makePNG(t, 1600, 1200)

	small, err := Resize(src, Small, ".png")
	require.NoError(t, err)

	w, h, err := Dimensions(small)
	require.NoError(t, err)
	assert.Equal(t, 300, w)
	assert.Equal(t, 225, h) // aspect ratio preserved

	medium, err := Resize(src, Medium, ".png")
	require.NoError(t, err)

	w, _, err = Dimensions(medium)
	require.NoError(t, err)
	assert.Equal(t, 800, w)
}

func TestResize_OriginalPassthrough(t *testing.T) {
	src := makePNG(t, 1600, 1200)

	out, err := Resize(src, Original, ".png")
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestResize_NeverUpscales(t *testing.T) {
	src := makePNG(t, 200, 150)

	out, err := Resize(src, Medium, ".png")
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestParseSize(t *testing.T) {
	assert.Equal(t, Small, ParseSize("small"))
	assert.Equal(t, Medium, ParseSize("MEDIUM"))
	assert.Equal(t, Original, ParseSize("original"))
	assert.Equal(t, Original, ParseSize(""))
	assert.Equal(t, Original, ParseSize("bogus"))
}
