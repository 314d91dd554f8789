package pixelperfect

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

// Orientation describes an EXIF orientation tag value.
// The zero value means the source carried no readable orientation.
type Orientation int

const (
	OrientUnknown     Orientation = 0
	OrientNormal      Orientation = 1
	OrientFlipH       Orientation = 2
	OrientRotate180   Orientation = 3
	OrientFlipV       Orientation = 4
	OrientTranspose   Orientation = 5 // Rotate 270 CW + flip H
	OrientRotate90CW  Orientation = 6
	OrientTransverse  Orientation = 7 // Rotate 90 CW + flip H
	OrientRotate270CW Orientation = 8
)

const exifOrientationTag = 0x0112

func (o Orientation) String() string {
	switch o {
	case OrientNormal:
		return "Normal"
	case OrientFlipH:
		return "FlipH"
	case OrientRotate180:
		return "Rotate180"
	case OrientFlipV:
		return "FlipV"
	case OrientTranspose:
		return "Transpose"
	case OrientRotate90CW:
		return "Rotate90"
	case OrientTransverse:
		return "Transverse"
	case OrientRotate270CW:
		return "Rotate270"
	default:
		return "Unknown"
	}
}

// Mirrored reports whether the orientation includes a flip.
func (o Orientation) Mirrored() bool {
	switch o {
	case OrientFlipH, OrientFlipV, OrientTranspose, OrientTransverse:
		return true
	}
	return false
}

// Rotation returns the clockwise rotation in degrees that Normalize applies:
// 90, 180 or 270 for the pure rotations and 0 for everything else.
func (o Orientation) Rotation() int {
	switch o {
	case OrientRotate90CW:
		return 90
	case OrientRotate180:
		return 180
	case OrientRotate270CW:
		return 270
	default:
		return 0
	}
}

// ReadOrientation reads the EXIF orientation tag from r.
// Returns OrientUnknown if the stream has no EXIF block, the block cannot be
// parsed, or the tag is missing or out of range. It never fails.
func ReadOrientation(r io.ReadSeeker) Orientation {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return OrientUnknown
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return OrientUnknown
	}
	return ReadOrientationBytes(data)
}

// ReadOrientationBytes is ReadOrientation over an in-memory source.
func ReadOrientationBytes(data []byte) Orientation {
	// Locates the TIFF header inside a JPEG APP1 segment or any other container.
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return OrientUnknown
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return OrientUnknown
	}

	// IFD0 is listed before the thumbnail IFD, so the first hit wins.
	for _, tag := range tags {
		if tag.TagId != exifOrientationTag {
			continue
		}
		code, ok := orientationValue(tag.Value)
		if !ok || code < int(OrientNormal) || code > int(OrientRotate270CW) {
			return OrientUnknown
		}
		return Orientation(code)
	}

	return OrientUnknown
}

func orientationValue(v interface{}) (int, bool) {
	switch val := v.(type) {
	case []uint16:
		if len(val) == 0 {
			return 0, false
		}
		return int(val[0]), true
	case uint16:
		return int(val), true
	case []uint32:
		if len(val) == 0 {
			return 0, false
		}
		return int(val[0]), true
	default:
		n, err := strconv.Atoi(strings.Trim(fmt.Sprint(val), "[] "))
		if err != nil {
			return 0, false
		}
		return n, true
	}
}

// Normalize rotates img so that it displays upright.
// Only the pure rotations are honored; mirrored and unknown orientations
// return img unchanged.
func Normalize(img *image.NRGBA, o Orientation) *image.NRGBA {
	switch o.Rotation() {
	case 90:
		// imaging rotates counter-clockwise.
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// ApplyOrientation applies the full EXIF orientation, including the mirrored
// variants, producing a correctly-oriented image with orientation = 1.
func ApplyOrientation(img *image.NRGBA, o Orientation) *image.NRGBA {
	switch o {
	case OrientFlipH:
		return imaging.FlipH(img)
	case OrientFlipV:
		return imaging.FlipV(img)
	case OrientTranspose:
		return imaging.Transpose(img)
	case OrientTransverse:
		return imaging.Transverse(img)
	default:
		return Normalize(img, o)
	}
}

// orient picks Normalize or ApplyOrientation according to opts.
func (o Options) orient(img *image.NRGBA, orientation Orientation) *image.NRGBA {
	if o.MirroredOrientation {
		return ApplyOrientation(img, orientation)
	}
	return Normalize(img, orientation)
}
