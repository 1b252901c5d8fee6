package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	return img
}

func decodeGray(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	return img
}

func TestPrepare_Formats(t *testing.T) {
	src := testImage(40, 20)
	encoders := map[string]func(*bytes.Buffer) error{
		"scan.png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"scan.jpg":  func(b *bytes.Buffer) error { return jpeg.Encode(b, src, nil) },
		"scan.bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
		"scan.tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) },
	}

	p := New(0)
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))

			out, err := p.Prepare(domain.Image{Filename: name, Data: buf.Bytes()})
			require.NoError(t, err)
			assert.Equal(t, "image/png", out.ContentType)
			assert.Equal(t, name, out.Filename)

			img := decodeGray(t, out.Data)
			assert.Equal(t, 40, img.Bounds().Dx())
			assert.Equal(t, 20, img.Bounds().Dy())
			_, isGray := img.(*image.Gray)
			assert.True(t, isGray)
		})
	}
}

func TestPrepare_Upscales(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(100, 50)))

	out, err := New(400).Prepare(domain.Image{Filename: "small.png", Data: buf.Bytes()})
	require.NoError(t, err)

	img := decodeGray(t, out.Data)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestPrepare_KeepsLargeImages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(500, 10)))

	out, err := New(400).Prepare(domain.Image{Filename: "wide.png", Data: buf.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, 500, decodeGray(t, out.Data).Bounds().Dx())
}

func TestPrepare_RejectsGarbage(t *testing.T) {
	_, err := New(0).Prepare(domain.Image{Filename: "notes.png", Data: []byte("not an image")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
