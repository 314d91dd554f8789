package main

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lihaila/pixelperfect"
)

// runCLI executes the command tree in-process and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func writeFixture(t *testing.T, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255})
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	if strings.HasSuffix(name, ".png") {
		require.NoError(t, png.Encode(f, img))
	} else {
		require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 95}))
	}
	return path
}

// writeRotatedJPEG writes a w x h JPEG whose APP1 Exif segment asks for a
// 90 degree clockwise rotation.
func writeRotatedJPEG(t *testing.T, name string, w, h int) string {
	t.Helper()
	var encoded bytes.Buffer
	require.NoError(t, jpeg.Encode(&encoded, image.NewGray(image.Rect(0, 0, w, h)), nil))
	data := encoded.Bytes()

	var tiff bytes.Buffer
	tiff.Write([]byte{'I', 'I', 0x2a, 0x00})
	for _, v := range []interface{}{
		uint32(8), uint16(1), // IFD0 offset, entry count
		uint16(0x0112), uint16(3), uint32(1), uint16(6), uint16(0), // Orientation = 6
		uint32(0), // next IFD
	} {
		require.NoError(t, binary.Write(&tiff, binary.LittleEndian, v))
	}
	app1 := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(data[:2])
	out.Write([]byte{0xff, 0xe1})
	require.NoError(t, binary.Write(&out, binary.BigEndian, uint16(len(app1)+2)))
	out.Write(app1)
	out.Write(data[2:])

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
	return path
}

func TestCLINoArgs(t *testing.T) {
	_, err := runCLI(t, "optimize")
	assert.Error(t, err)
}

func TestCLIVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pixelperfect "+pixelperfect.Version+"\n", out)
}

func TestCLIInfo(t *testing.T) {
	src := writeFixture(t, "photo.png", 64, 48)

	out, err := runCLI(t, "info", src)
	require.NoError(t, err)

	for _, want := range []string{"image/png", "64x48", "Unknown"} {
		assert.Contains(t, out, want)
	}
}

func TestCLIOptimizeDefaultOutput(t *testing.T) {
	src := writeFixture(t, "photo.png", 200, 100)

	out, err := runCLI(t, "optimize", "--max-width", "100", src)
	require.NoError(t, err)

	dst := strings.TrimSuffix(src, ".png") + "_optimized.jpg"
	assert.FileExists(t, dst)
	assert.Contains(t, out, "200x100 -> 100x50")
	assert.Contains(t, out, "JPEG")

	decoded, err := pixelperfect.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", decoded.MIME)
	assert.Equal(t, 100, decoded.Image.Bounds().Dx())
	assert.Equal(t, 50, decoded.Image.Bounds().Dy())
}

func TestCLIOptimizeSVG(t *testing.T) {
	src := writeFixture(t, "logo.jpg", 40, 40)
	dst := filepath.Join(t.TempDir(), "logo.svg")

	out, err := runCLI(t, "optimize", "-f", "svg", src, dst)
	require.NoError(t, err)

	assert.Contains(t, out, "not resolution independent")
	doc, err := os.ReadFile(dst)
	require.NoError(t, err)
	_, w, h, err := pixelperfect.ParseVectorDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 40, h)
}

func TestCLIOptimizeRejectsUnknownNames(t *testing.T) {
	src := writeFixture(t, "photo.png", 10, 10)

	_, err := runCLI(t, "optimize", "-f", "heic", src)
	assert.ErrorContains(t, err, "heic")

	_, err = runCLI(t, "optimize", "--kernel", "nearest", src)
	assert.ErrorContains(t, err, "nearest")
}

func TestCLIFlagsOverrideConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: png\nmax_width: 20\n"), 0o644))
	src := writeFixture(t, "photo.jpg", 80, 40)

	out, err := runCLI(t, "optimize", "--config", cfgPath, "--max-width", "40", src)
	require.NoError(t, err)

	assert.Contains(t, out, "PNG")
	assert.Contains(t, out, "80x40 -> 40x20")
	assert.FileExists(t, strings.TrimSuffix(src, ".jpg")+"_optimized.png")
}

func TestRenderSummary(t *testing.T) {
	out := renderSummary([]summaryRow{
		{Label: "A", Value: "1"},
		{Label: "Longer", Value: "22"},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], strings.Repeat("-", len("Longer")+len("22")+3))
	assert.Contains(t, lines[1], "A     ")
	assert.Contains(t, lines[2], "Longer")
	assert.Contains(t, lines[2], "22")
}

func TestCLIRotatedPhoto(t *testing.T) {
	src := writeRotatedJPEG(t, "camera.jpg", 60, 20)

	out, err := runCLI(t, "info", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Rotate90")
	assert.Contains(t, out, "60x20")

	dst := filepath.Join(filepath.Dir(src), "upright.jpg")
	_, err = runCLI(t, "optimize", src, dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 60, cfg.Height)
}
