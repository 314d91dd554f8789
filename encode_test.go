package pixelperfect

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func assertPixelsEqual(t *testing.T, want *image.NRGBA, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size())
	assert.Equal(t, want.Pix, toNRGBA(got).Pix)
}

func makeFewColorImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*img.Stride + x*4
			if x < w/2 {
				img.Pix[off] = 255
			}
			if y < h/2 {
				img.Pix[off+2] = 255
			}
			img.Pix[off+3] = 255
		}
	}
	return img
}

// ── Encoder Selection ───────────────────────────────────────────────────────

func TestNewEncoder(t *testing.T) {
	cases := map[Format]Format{
		RasterLossy:    RasterLossy,
		RasterLossless: RasterLossless,
		VectorWrapper:  VectorWrapper,
		Format(-1):     RasterLossy,
		Format(99):     RasterLossy,
	}
	for in, want := range cases {
		assert.Equal(t, want, NewEncoder(in, nil).Format(), "format %d", int(in))
	}
}

func TestLossyEncoder(t *testing.T) {
	img := makeTestImage(64, 48)

	enc, err := NewEncoder(RasterLossy, ImagingCodec{}).Encode(img, 300)
	require.NoError(t, err)

	assert.Equal(t, MaxQuality, enc.Quality)
	assert.Equal(t, 64, enc.Width)
	assert.Equal(t, 48, enc.Height)
	assert.Equal(t, image.Rect(0, 0, 64, 48), decodeJPEG(t, enc.Data).Bounds())
}

func TestLossyQualityAffectsSize(t *testing.T) {
	img := makeTestImage(200, 200)
	enc := NewEncoder(RasterLossy, nil)

	low, err := enc.Encode(img, 10)
	require.NoError(t, err)
	high, err := enc.Encode(img, 95)
	require.NoError(t, err)

	assert.Less(t, len(low.Data), len(high.Data))
}

// ── Lossless ────────────────────────────────────────────────────────────────

func TestLosslessPalettized(t *testing.T) {
	img := makeFewColorImage(50, 40)

	enc, err := NewEncoder(RasterLossless, nil).Encode(img, 50)
	require.NoError(t, err)

	decoded := decodePNG(t, enc.Data)
	_, isPaletted := decoded.(*image.Paletted)
	assert.True(t, isPaletted, "few-color image should be written as an indexed PNG")
	assertPixelsEqual(t, img, decoded)
}

func TestLosslessGrayscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 2))
	for x := 0; x < 256; x++ {
		v := uint8(x)
		img.SetNRGBA(x, 0, color.NRGBA{v, v, v, 255})
		img.SetNRGBA(x, 1, color.NRGBA{255 - v, 255 - v, 255 - v, 255})
	}
	assert.IsType(t, &image.Gray{}, compactLossless(img))

	enc, err := NewEncoder(RasterLossless, nil).Encode(img, 0)
	require.NoError(t, err)
	decoded := decodePNG(t, enc.Data)
	assert.IsType(t, &image.Gray{}, decoded)
	assertPixelsEqual(t, img, decoded)
}

func TestCompactLossless(t *testing.T) {
	assert.IsType(t, &image.Gray{}, compactLossless(makeSolidImage(2, 2, color.NRGBA{1, 1, 1, 255})))
	assert.IsType(t, &image.Paletted{}, compactLossless(makeFewColorImage(8, 8)))
	assert.IsType(t, &image.NRGBA{}, compactLossless(makeTestImage(64, 64)))
}

func TestLosslessTransparency(t *testing.T) {
	img := makeTestImage(40, 40)
	for i := 3; i < len(img.Pix); i += 16 {
		img.Pix[i] = 0x80
	}

	enc, err := NewEncoder(RasterLossless, nil).Encode(img, 0)
	require.NoError(t, err)
	assertPixelsEqual(t, img, decodePNG(t, enc.Data))
}

func TestTryPalettize(t *testing.T) {
	assert.NotNil(t, tryPalettize(makeFewColorImage(50, 50), 256))
	assert.Nil(t, tryPalettize(makeTestImage(200, 200), 256))
}

func TestTryPalettizeDeterministic(t *testing.T) {
	a := makeFewColorImage(20, 20)
	b := makeFewColorImage(20, 20)
	// Same colors, mirrored layout: first-seen order differs.
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			b.SetNRGBA(x, y, a.NRGBAAt(19-x, 19-y))
		}
	}

	pa := tryPalettize(a, 256)
	pb := tryPalettize(b, 256)
	require.NotNil(t, pa)
	require.NotNil(t, pb)
	assert.Equal(t, pa.Palette, pb.Palette)

	first, err := NewEncoder(RasterLossless, nil).Encode(a, 0)
	require.NoError(t, err)
	second, err := NewEncoder(RasterLossless, nil).Encode(a, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
}

func TestIsGrayscale(t *testing.T) {
	assert.True(t, isGrayscale(makeSolidImage(10, 10, color.NRGBA{128, 128, 128, 255})))
	assert.False(t, isGrayscale(makeTestImage(10, 10)))
	assert.False(t, isGrayscale(makeSolidImage(10, 10, color.NRGBA{128, 128, 128, 10})))
}

// ── Vector Wrapper ──────────────────────────────────────────────────────────

func TestVectorDocumentLayout(t *testing.T) {
	raster := []byte{0xff, 0xd8, 0xff, 0xd9}
	doc := string(VectorDocument(640, 480, raster))

	want := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="640" height="480" viewBox="0 0 640 480">` + "\n" +
		`  <image width="640" height="480" xlink:href="data:image/jpeg;base64,` + base64.StdEncoding.EncodeToString(raster) + `"/>` + "\n" +
		`</svg>`
	assert.Equal(t, want, doc)
}

func TestParseVectorDocument(t *testing.T) {
	raster := []byte("not really a jpeg")
	got, w, h, err := ParseVectorDocument(VectorDocument(12, 34, raster))
	require.NoError(t, err)
	assert.Equal(t, raster, got)
	assert.Equal(t, 12, w)
	assert.Equal(t, 34, h)
}

func TestParseVectorDocumentErrors(t *testing.T) {
	cases := map[string]string{
		"not xml":     "plain text",
		"wrong root":  `<html xmlns="http://www.w3.org/2000/svg"></html>`,
		"png payload": strings.Replace(string(VectorDocument(1, 1, []byte{1})), "image/jpeg", "image/png", 1),
		"bad base64":  strings.Replace(string(VectorDocument(1, 1, []byte{1, 2, 3})), "base64,", "base64,!!", 1),
	}
	for name, doc := range cases {
		_, _, _, err := ParseVectorDocument([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestVectorEncoder(t *testing.T) {
	img := makeTestImage(33, 21)

	enc, err := NewEncoder(VectorWrapper, nil).Encode(img, 5)
	require.NoError(t, err)
	assert.Equal(t, VectorQuality, enc.Quality)
	assert.True(t, bytes.HasPrefix(enc.Data, []byte("<?xml")))
	assert.True(t, bytes.HasSuffix(enc.Data, []byte("</svg>")))

	raster, w, h, err := ParseVectorDocument(enc.Data)
	require.NoError(t, err)
	assert.Equal(t, 33, w)
	assert.Equal(t, 21, h)
	assert.Equal(t, image.Rect(0, 0, 33, 21), decodeJPEG(t, raster).Bounds())
}

// ── Formats ─────────────────────────────────────────────────────────────────

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"jpeg": RasterLossy,
		"JPG":  RasterLossy,
		"png":  RasterLossless,
		" Svg": VectorWrapper,
	}
	for name, want := range cases {
		got, ok := ParseFormat(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	got, ok := ParseFormat("webp")
	assert.False(t, ok)
	assert.Equal(t, RasterLossy, got)
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "JPEG", Format(7).String())
	assert.Equal(t, ".png", RasterLossless.Extension())
	assert.Equal(t, "image/svg+xml", VectorWrapper.MIMEType())
	assert.Equal(t, "image/jpeg", RasterLossy.MIMEType())
}
