package pixelperfect

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// toNRGBA converts any image.Image to a zero-origin *image.NRGBA, always
// returning a new copy.
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		bounds := nrgba.Bounds()
		w, h := bounds.Dx(), bounds.Dy()
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			srcOff := nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], nrgba.Pix[srcOff:srcOff+w*4])
		}
		return dst
	}
	return convertToNRGBA(img)
}

// toNRGBARef converts any image.Image to a zero-origin *image.NRGBA without
// copying when the input already is one. The caller must NOT modify the
// returned image.
func toNRGBARef(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	if nrgba, ok := img.(*image.NRGBA); ok {
		return toNRGBA(nrgba)
	}
	return convertToNRGBA(img)
}

// convertToNRGBA does the pixel-by-pixel conversion from any image format to
// NRGBA, un-premultiplying alpha.
func convertToNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			off := (y-bounds.Min.Y)*dst.Stride + (x-bounds.Min.X)*4
			switch a {
			case 0:
				// Fully transparent pixels stay zero.
			case 0xffff:
				dst.Pix[off] = uint8(r >> 8)
				dst.Pix[off+1] = uint8(g >> 8)
				dst.Pix[off+2] = uint8(b >> 8)
				dst.Pix[off+3] = 0xff
			default:
				dst.Pix[off] = uint8(((r * 0xffff) / a) >> 8)
				dst.Pix[off+1] = uint8(((g * 0xffff) / a) >> 8)
				dst.Pix[off+2] = uint8(((b * 0xffff) / a) >> 8)
				dst.Pix[off+3] = uint8(a >> 8)
			}
		}
	}
	return dst
}

// isGrayscale checks if all pixels are opaque with R == G == B.
func isGrayscale(img *image.NRGBA) bool {
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] != 0xff || img.Pix[i] != img.Pix[i+1] || img.Pix[i+1] != img.Pix[i+2] {
			return false
		}
	}
	return true
}

// toGray converts to a grayscale image (1 byte per pixel instead of 4).
// Only valid when isGrayscale holds.
func toGray(img *image.NRGBA) *image.Gray {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		srcOff := y * img.Stride
		dstOff := y * gray.Stride
		for x := 0; x < w; x++ {
			gray.Pix[dstOff+x] = img.Pix[srcOff+x*4]
		}
	}
	return gray
}

// tryPalettize converts the image to an indexed palette when it uses at most
// maxColors distinct colors, and returns nil otherwise. The conversion is
// exact. Palette entries are sorted so equal inputs give equal output.
func tryPalettize(img *image.NRGBA, maxColors int) *image.Paletted {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	seen := make(map[[4]uint8]struct{})
	for y := 0; y < h; y++ {
		off := y * img.Stride
		for x := 0; x < w; x++ {
			i := off + x*4
			seen[[4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}] = struct{}{}
			if len(seen) > maxColors {
				return nil
			}
		}
	}

	keys := make([][4]uint8, 0, len(seen))
	for c := range seen {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		for k := 0; k < 4; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	palette := make(color.Palette, len(keys))
	index := make(map[[4]uint8]uint8, len(keys))
	for i, c := range keys {
		palette[i] = color.NRGBA{c[0], c[1], c[2], c[3]}
		index[c] = uint8(i)
	}

	paletted := image.NewPaletted(image.Rect(0, 0, w, h), palette)
	for y := 0; y < h; y++ {
		srcOff := y * img.Stride
		dstOff := y * paletted.Stride
		for x := 0; x < w; x++ {
			i := srcOff + x*4
			paletted.Pix[dstOff+x] = index[[4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}]
		}
	}

	return paletted
}

// clampF clamps a float64 to uint8 range [0, 255].
func clampF(x float64) uint8 {
	v := int64(math.Round(x))
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}
