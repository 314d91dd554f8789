package pixelperfect

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"image"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Encoder is one output strategy.
type Encoder interface {
	// Format returns the format tag the encoder produces.
	Format() Format
	// Encode encodes img. quality is ignored by strategies that fix their own.
	Encode(img *image.NRGBA, quality int) (*Encoded, error)
}

// NewEncoder returns the strategy for f backed by codec c.
// Unknown formats get the RasterLossy strategy; a nil codec means ImagingCodec.
func NewEncoder(f Format, c Codec) Encoder {
	if c == nil {
		c = ImagingCodec{}
	}
	switch f.normalized() {
	case RasterLossless:
		return losslessEncoder{codec: c}
	case VectorWrapper:
		return vectorEncoder{codec: c}
	default:
		return lossyEncoder{codec: c}
	}
}

// ── RasterLossy ─────────────────────────────────────────────────────────────

type lossyEncoder struct {
	codec Codec
}

func (lossyEncoder) Format() Format { return RasterLossy }

func (e lossyEncoder) Encode(img *image.NRGBA, quality int) (*Encoded, error) {
	quality = ClampQuality(quality)
	data, err := encodeLossy(e.codec, img, quality)
	if err != nil {
		return nil, &EncodeError{Format: RasterLossy, Reason: "lossy codec failed", Err: err}
	}
	return &Encoded{
		Data:    data,
		Format:  RasterLossy,
		Width:   img.Bounds().Dx(),
		Height:  img.Bounds().Dy(),
		Quality: quality,
	}, nil
}

func encodeLossy(c Codec, img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodeLossy(&buf, img, quality); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.New("codec produced no data")
	}
	return buf.Bytes(), nil
}

// ── RasterLossless ──────────────────────────────────────────────────────────

type losslessEncoder struct {
	codec Codec
}

func (losslessEncoder) Format() Format { return RasterLossless }

func (e losslessEncoder) Encode(img *image.NRGBA, _ int) (*Encoded, error) {
	var buf bytes.Buffer
	if err := e.codec.EncodeLossless(&buf, compactLossless(img)); err != nil {
		return nil, &EncodeError{Format: RasterLossless, Reason: "lossless codec failed", Err: err}
	}
	if buf.Len() == 0 {
		return nil, &EncodeError{Format: RasterLossless, Reason: "codec produced no data"}
	}
	return &Encoded{
		Data:   buf.Bytes(),
		Format: RasterLossless,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

// compactLossless picks a smaller exact pixel layout: grayscale when every
// pixel is an opaque gray, an indexed palette when the image has at most 256
// colors, and the NRGBA image otherwise.
func compactLossless(img *image.NRGBA) image.Image {
	if isGrayscale(img) {
		return toGray(img)
	}
	if paletted := tryPalettize(img, 256); paletted != nil {
		return paletted
	}
	return img
}

// ── VectorWrapper ───────────────────────────────────────────────────────────

const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
	jpegDataURI    = "data:image/jpeg;base64,"
)

type vectorEncoder struct {
	codec Codec
}

func (vectorEncoder) Format() Format { return VectorWrapper }

func (e vectorEncoder) Encode(img *image.NRGBA, _ int) (*Encoded, error) {
	raster, err := encodeLossy(e.codec, img, VectorQuality)
	if err != nil {
		return nil, &EncodeError{Format: VectorWrapper, Reason: "embedded raster failed", Err: err}
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	return &Encoded{
		Data:    VectorDocument(w, h, raster),
		Format:  VectorWrapper,
		Width:   w,
		Height:  h,
		Quality: VectorQuality,
	}, nil
}

// VectorDocument wraps a JPEG raster of w x h pixels in the SVG container
// format. The layout (attribute order, namespaces) is fixed so existing
// readers keep parsing it.
func VectorDocument(w, h int, jpeg []byte) []byte {
	ws, hs := strconv.Itoa(w), strconv.Itoa(h)

	var doc bytes.Buffer
	doc.Grow(base64.StdEncoding.EncodedLen(len(jpeg)) + 320)
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	doc.WriteString(`<svg xmlns="` + svgNamespace + `" xmlns:xlink="` + xlinkNamespace + `"`)
	doc.WriteString(` width="` + ws + `" height="` + hs + `" viewBox="0 0 ` + ws + " " + hs + `">` + "\n")
	doc.WriteString(`  <image width="` + ws + `" height="` + hs + `" xlink:href="` + jpegDataURI)
	doc.WriteString(base64.StdEncoding.EncodeToString(jpeg))
	doc.WriteString(`"/>` + "\n")
	doc.WriteString(`</svg>`)
	return doc.Bytes()
}

type svgDocument struct {
	XMLName xml.Name `xml:"http://www.w3.org/2000/svg svg"`
	Width   int      `xml:"width,attr"`
	Height  int      `xml:"height,attr"`
	Image   struct {
		Width  int    `xml:"width,attr"`
		Height int    `xml:"height,attr"`
		Href   string `xml:"http://www.w3.org/1999/xlink href,attr"`
	} `xml:"image"`
}

// ParseVectorDocument extracts the embedded JPEG and its declared dimensions
// from a document produced by VectorDocument.
func ParseVectorDocument(doc []byte) (jpeg []byte, w, h int, err error) {
	var svg svgDocument
	if err := xml.Unmarshal(doc, &svg); err != nil {
		return nil, 0, 0, errors.Wrap(err, "pixelperfect: parse vector document")
	}
	if !strings.HasPrefix(svg.Image.Href, jpegDataURI) {
		return nil, 0, 0, errors.New("pixelperfect: vector document has no embedded JPEG")
	}
	jpeg, err = base64.StdEncoding.DecodeString(strings.TrimPrefix(svg.Image.Href, jpegDataURI))
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, "pixelperfect: decode embedded raster")
	}
	return jpeg, svg.Image.Width, svg.Image.Height, nil
}
