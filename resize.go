package pixelperfect

import (
	"image"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Kernel selects the resample filter used when the image is resized.
// Nearest-neighbor is deliberately not offered.
type Kernel int

const (
	// KernelLanczos is a two-pass Lanczos-3 filter with premultiplied alpha.
	KernelLanczos Kernel = iota
	// KernelCatmullRom is the Catmull-Rom cubic from golang.org/x/image/draw.
	KernelCatmullRom
	// KernelBicubic is the bicubic filter from github.com/nfnt/resize.
	KernelBicubic
	// KernelLinear is bilinear interpolation from github.com/disintegration/imaging.
	KernelLinear
)

func (k Kernel) String() string {
	switch k {
	case KernelCatmullRom:
		return "catmullrom"
	case KernelBicubic:
		return "bicubic"
	case KernelLinear:
		return "linear"
	default:
		return "lanczos"
	}
}

// ParseKernel maps a kernel name to a Kernel. Unknown names yield
// KernelLanczos and ok=false.
func ParseKernel(name string) (k Kernel, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lanczos", "lanczos3", "":
		return KernelLanczos, true
	case "catmullrom", "catmull-rom":
		return KernelCatmullRom, true
	case "bicubic", "cubic":
		return KernelBicubic, true
	case "linear", "bilinear":
		return KernelLinear, true
	default:
		return KernelLanczos, false
	}
}

// TargetSize computes the output dimensions for a srcW x srcH image.
// maxW and maxH of 0 (or less) are absent bounds. Every returned dimension is
// at least 1.
func TargetSize(srcW, srcH, maxW, maxH int, keepAspect bool) (int, int) {
	hasW, hasH := maxW > 0, maxH > 0
	if !hasW && !hasH {
		return atLeastOne(srcW), atLeastOne(srcH)
	}

	if !keepAspect || srcW <= 0 || srcH <= 0 {
		dstW, dstH := srcW, srcH
		if hasW {
			dstW = maxW
		}
		if hasH {
			dstH = maxH
		}
		return atLeastOne(dstW), atLeastOne(dstH)
	}

	var dstW, dstH int
	switch {
	case hasW && hasH:
		// Containment: the axis with the smaller ratio binds exactly and the
		// other is floored. Compare maxW/srcW < maxH/srcH without division.
		if maxW*srcH <= maxH*srcW {
			dstW = maxW
			dstH = srcH * maxW / srcW
		} else {
			dstH = maxH
			dstW = srcW * maxH / srcH
		}
	case hasW:
		dstW = maxW
		dstH = int(math.Round(float64(maxW) * float64(srcH) / float64(srcW)))
	default:
		dstH = maxH
		dstW = int(math.Round(float64(maxH) * float64(srcW) / float64(srcH)))
	}
	return atLeastOne(dstW), atLeastOne(dstH)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Resize applies the bounds in opts to img. When the computed target equals
// the source dimensions img itself is returned, untouched.
func Resize(img *image.NRGBA, opts Options) *image.NRGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	dstW, dstH := TargetSize(srcW, srcH, opts.MaxWidth, opts.MaxHeight, opts.MaintainAspectRatio)
	if dstW == srcW && dstH == srcH {
		return img
	}
	return resample(img, dstW, dstH, opts.Kernel)
}

func resample(img *image.NRGBA, dstW, dstH int, k Kernel) *image.NRGBA {
	switch k {
	case KernelCatmullRom:
		dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		return dst
	case KernelBicubic:
		return toNRGBARef(resize.Resize(uint(dstW), uint(dstH), img, resize.Bicubic))
	case KernelLinear:
		return imaging.Resize(img, dstW, dstH, imaging.Linear)
	default:
		return lanczosResize(img, dstW, dstH)
	}
}

// lanczosResize performs high-quality Lanczos-3 interpolation as a two-pass
// separable filter: horizontal then vertical. Alpha is premultiplied during
// accumulation so transparent pixels do not bleed color into their neighbors.
func lanczosResize(img *image.NRGBA, dstW, dstH int) *image.NRGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	if img.Rect.Min != (image.Point{}) {
		img = toNRGBA(img)
	}

	tmp := img
	if dstW != srcW {
		tmp = resizeAxis(img, dstW, srcH, true)
	}
	if dstH != srcH {
		return resizeAxis(tmp, dstW, dstH, false)
	}
	if tmp == img {
		return toNRGBA(img)
	}
	return tmp
}

const lanczosA = 3.0

func lanczosKernel(x float64) float64 {
	if x == 0 {
		return 1.0
	}
	if x < 0 {
		x = -x
	}
	if x >= lanczosA {
		return 0.0
	}
	xpi := x * math.Pi
	return (lanczosA * math.Sin(xpi) * math.Sin(xpi/lanczosA)) / (xpi * xpi)
}

type weightEntry struct {
	index  int
	weight float64
}

// lanczosWeights precomputes normalized filter taps for every destination
// sample along one axis.
func lanczosWeights(srcLen, dstLen int) [][]weightEntry {
	ratio := float64(srcLen) / float64(dstLen)
	scale := math.Max(ratio, 1.0)
	support := lanczosA * scale

	weights := make([][]weightEntry, dstLen)
	for d := 0; d < dstLen; d++ {
		center := (float64(d)+0.5)*ratio - 0.5
		lo := int(math.Ceil(center - support))
		hi := int(math.Floor(center + support))
		if lo < 0 {
			lo = 0
		}
		if hi >= srcLen {
			hi = srcLen - 1
		}

		var wsum float64
		entries := make([]weightEntry, 0, hi-lo+1)
		for s := lo; s <= hi; s++ {
			w := lanczosKernel((float64(s) - center) / scale)
			if w != 0 {
				wsum += w
				entries = append(entries, weightEntry{s, w})
			}
		}
		if wsum != 0 {
			for i := range entries {
				entries[i].weight /= wsum
			}
		}
		weights[d] = entries
	}
	return weights
}

// resizeAxis resamples src along a single axis into a dstW x dstH image.
// horizontal selects which axis is filtered; the other must already match.
func resizeAxis(src *image.NRGBA, dstW, dstH int, horizontal bool) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))

	var weights [][]weightEntry
	var lines, samples int
	if horizontal {
		weights = lanczosWeights(src.Bounds().Dx(), dstW)
		lines, samples = dstH, dstW
	} else {
		weights = lanczosWeights(src.Bounds().Dy(), dstH)
		lines, samples = dstW, dstH
	}

	parallelDo(0, lines, func(line int) {
		for s := 0; s < samples; s++ {
			var r, g, b, a float64

			for _, we := range weights[s] {
				var off int
				if horizontal {
					off = line*src.Stride + we.index*4
				} else {
					off = we.index*src.Stride + line*4
				}
				aw := float64(src.Pix[off+3]) * we.weight
				r += float64(src.Pix[off]) * aw
				g += float64(src.Pix[off+1]) * aw
				b += float64(src.Pix[off+2]) * aw
				a += aw
			}

			var dstOff int
			if horizontal {
				dstOff = line*dst.Stride + s*4
			} else {
				dstOff = s*dst.Stride + line*4
			}
			if a > 0 {
				inv := 1.0 / a
				dst.Pix[dstOff] = clampF(r * inv)
				dst.Pix[dstOff+1] = clampF(g * inv)
				dst.Pix[dstOff+2] = clampF(b * inv)
				dst.Pix[dstOff+3] = clampF(a)
			}
		}
	})

	return dst
}

// parallelDo executes fn(i) for i in [start, stop) across multiple goroutines
// and returns once every call has finished.
func parallelDo(start, stop int, fn func(i int)) {
	count := stop - start
	if count <= 0 {
		return
	}

	procs := runtime.GOMAXPROCS(0)
	if procs > count {
		procs = count
	}
	if procs <= 1 {
		for i := start; i < stop; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	batchSize := (count + procs - 1) / procs

	for p := 0; p < procs; p++ {
		batchStart := start + p*batchSize
		batchEnd := batchStart + batchSize
		if batchEnd > stop {
			batchEnd = stop
		}
		if batchStart >= batchEnd {
			continue
		}

		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			for i := from; i < to; i++ {
				fn(i)
			}
		}(batchStart, batchEnd)
	}
	wg.Wait()
}
