package pixelperfect

import (
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/disintegration/imaging"
)

// Codec is the raster codec capability the encoders delegate entropy coding
// to. Implementations must be safe for concurrent use, or be wrapped with
// Serialize.
type Codec interface {
	// EncodeLossy writes img as JPEG at the given quality (1-100).
	EncodeLossy(w io.Writer, img image.Image, quality int) error
	// EncodeLossless writes img as PNG.
	EncodeLossless(w io.Writer, img image.Image) error
}

// ImagingCodec encodes through github.com/disintegration/imaging.
// It is stateless and safe for concurrent use.
type ImagingCodec struct {
	// CompressionLevel is the PNG compression level. The zero value
	// (png.DefaultCompression) is replaced by png.BestCompression.
	CompressionLevel png.CompressionLevel
}

func (c ImagingCodec) EncodeLossy(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

func (c ImagingCodec) EncodeLossless(w io.Writer, img image.Image) error {
	level := c.CompressionLevel
	if level == png.DefaultCompression {
		level = png.BestCompression
	}
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(level))
}

// Serialize wraps c so that at most one call runs at a time.
func Serialize(c Codec) Codec {
	return &serialCodec{codec: c}
}

type serialCodec struct {
	mu    sync.Mutex
	codec Codec
}

func (s *serialCodec) EncodeLossy(w io.Writer, img image.Image, quality int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.EncodeLossy(w, img, quality)
}

func (s *serialCodec) EncodeLossless(w io.Writer, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.EncodeLossless(w, img)
}
