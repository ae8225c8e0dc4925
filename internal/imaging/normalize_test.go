package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sitefoto/sitefoto/internal/config"
)

func testNormalizer() *Normalizer {
	cfg := config.Load()
	return New(&cfg.Imaging)
}

// writePNG writes a w x h PNG. When transparent is set, the left half of
// the image has zero alpha.
func writePNG(t *testing.T, path string, w, h int, transparent bool) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if transparent && x < w/2 {
				img.Set(x, y, color.RGBA{0, 0, 0, 0})
			} else {
				img.Set(x, y, color.RGBA{200, 30, 30, 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode file: %v", err)
	}
	return img, format
}

func TestNormalize_DownscalesAndFlattens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, 2000, 1500, true)

	if err := testNormalizer().Normalize(path); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	img, format := decodeFile(t, path)
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}

	// 2000x1500 limited by height: scale 1080/1500 = 0.72 -> 1440x1080.
	b := img.Bounds()
	if b.Dx() != 1440 || b.Dy() != 1080 {
		t.Errorf("expected 1440x1080, got %dx%d", b.Dx(), b.Dy())
	}

	// The transparent left half must have become white.
	r, g, bl, _ := img.At(10, 10).RGBA()
	if r>>8 < 240 || g>>8 < 240 || bl>>8 < 240 {
		t.Errorf("transparent region not flattened to white: got rgb(%d,%d,%d)", r>>8, g>>8, bl>>8)
	}
}

func TestNormalize_WithinBoundsKeepsDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.png")
	writePNG(t, path, 800, 600, false)

	n := testNormalizer()
	if err := n.Normalize(path); err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	if err := n.Normalize(path); err != nil {
		t.Fatalf("second normalize: %v", err)
	}

	img, _ := decodeFile(t, path)
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("expected dimensions preserved at 800x600, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalize_CorruptFileLeftUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.jpg")
	garbage := []byte("this is not an image at all")
	if err := os.WriteFile(path, garbage, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := testNormalizer().Normalize(path); err == nil {
		t.Fatal("expected error for corrupt image")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(data, garbage) {
		t.Error("corrupt file was modified")
	}
}

// jpegWithOrientation encodes a w x h JPEG and splices an EXIF APP1
// segment carrying the given orientation tag in after the SOI marker.
func jpegWithOrientation(t *testing.T, w, h, orientation int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()

	// APP1: "Exif\0\0", little-endian TIFF header, one IFD0 entry
	// (tag 0x0112 Orientation, type SHORT, count 1).
	app1 := []byte{
		0xff, 0xe1, 0x00, 0x22,
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'I', 'I', 0x2a, 0x00, 0x08, 0x00, 0x00, 0x00,
		0x01, 0x00,
		0x12, 0x01, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, byte(orientation), 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	out := make([]byte, 0, len(data)+len(app1))
	out = append(out, data[:2]...)
	out = append(out, app1...)
	out = append(out, data[2:]...)
	return out
}

func TestReadOrientation_ExifTag(t *testing.T) {
	data := jpegWithOrientation(t, 8, 4, 6)
	if got := readOrientation(data); got != 6 {
		t.Errorf("expected orientation 6, got %d", got)
	}
}

func TestNormalize_ExifOrientationSwapsDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sideways.jpg")
	if err := os.WriteFile(path, jpegWithOrientation(t, 40, 20, 6), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := testNormalizer().Normalize(path); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	img, format := decodeFile(t, path)
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	b := img.Bounds()
	if b.Dx() != 20 || b.Dy() != 40 {
		t.Errorf("expected rotated 20x40, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestReadOrientation_NoExif(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := readOrientation(buf.Bytes()); got != 1 {
		t.Errorf("expected orientation 1 for plain jpeg, got %d", got)
	}
}

func TestApplyOrientation_Rotations(t *testing.T) {
	// 3x2 source, top-right pixel marked.
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	mark := color.RGBA{255, 0, 0, 255}
	src.Set(2, 0, mark)

	tests := []struct {
		name        string
		orientation int
		wantW       int
		wantH       int
		markX       int
		markY       int
	}{
		{"identity", 1, 3, 2, 2, 0},
		{"rotate180", 3, 3, 2, 0, 1},
		{"rotate270", 6, 2, 3, 1, 2},
		{"rotate90", 8, 2, 3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := applyOrientation(src, tt.orientation)
			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Fatalf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, b.Dx(), b.Dy())
			}
			r, _, _, _ := out.At(tt.markX, tt.markY).RGBA()
			if r>>8 != 255 {
				t.Errorf("marked pixel not at (%d,%d)", tt.markX, tt.markY)
			}
		})
	}
}

func TestThumbnail_FitsBox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, path, 1000, 800, false)

	data, err := testNormalizer().Thumbnail(path, 300)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 240 {
		t.Errorf("expected 300x240 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestThumbnail_NeverUpscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.png")
	writePNG(t, path, 100, 80, false)

	data, err := testNormalizer().Thumbnail(path, 300)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("expected 100x80 (no upscale), got %dx%d", b.Dx(), b.Dy())
	}
}
