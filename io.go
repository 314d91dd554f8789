package pixelperfect

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	// Decoders beyond the JPEG and PNG ones that imaging registers.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is a decoded input image with the metadata the pipeline needs.
type Source struct {
	// Image is the decoded raster, not yet oriented.
	Image image.Image
	// Orientation is the EXIF orientation, OrientUnknown if absent.
	Orientation Orientation
	// MIME is the sniffed media type of the input bytes.
	MIME string
	// Size is the input size in bytes.
	Size int64
}

// Decode sniffs, decodes and reads the orientation of an encoded image.
// Unsupported or corrupt data returns a *DecodeError, which matches
// ErrNoImage under errors.Is.
func Decode(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}

	mime := mimetype.Detect(data)
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{MIME: mime.String(), Err: err}
	}

	return &Source{
		Image:       img,
		Orientation: ReadOrientationBytes(data),
		MIME:        mime.String(),
		Size:        int64(len(data)),
	}, nil
}

// Open reads and decodes the image at path.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "pixelperfect: open %q", path)
	}
	src, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "pixelperfect: decode %q", path)
	}
	return src, nil
}

// ProcessFile opens src, runs the default pipeline and writes the result to
// dst. When dst is empty it is derived from src with OutputPath.
func ProcessFile(src, dst string, opts Options) (*Result, error) {
	return defaultProcessor.ProcessFile(src, dst, opts)
}

// ProcessFile is the Processor form of the package-level ProcessFile.
func (p *Processor) ProcessFile(src, dst string, opts Options) (*Result, error) {
	source, err := Open(src)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("decoded source", "path", src, "mime", source.MIME,
		"size", FormatSize(source.Size), "orientation", source.Orientation.String())

	result, err := p.Process(source.Image, source.Orientation, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "pixelperfect: process %q", src)
	}

	if dst == "" {
		dst = OutputPath(src, result.Format())
	}
	if err := os.WriteFile(dst, result.Bytes(), 0o644); err != nil {
		return nil, errors.Wrapf(err, "pixelperfect: write %q", dst)
	}
	return result, nil
}

// OutputPath derives "<dir>/<base>_optimized<ext>" from an input path, with
// the extension taken from f.
func OutputPath(input string, f Format) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "_optimized" + f.normalized().Extension()
}

// FormatFromPath infers the output format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}
