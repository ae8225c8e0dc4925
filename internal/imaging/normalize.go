// Package imaging normalizes uploaded photos: EXIF orientation correction,
// bounded downscaling, and canonical JPEG re-encoding.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/sitefoto/sitefoto/internal/config"
)

// Normalizer rewrites raster images into the canonical on-disk form.
type Normalizer struct {
	maxWidth  int
	maxHeight int
	quality   int
}

// New creates a Normalizer from the imaging configuration.
func New(cfg *config.ImagingConfig) *Normalizer {
	return &Normalizer{
		maxWidth:  cfg.Normalize.MaxWidth,
		maxHeight: cfg.Normalize.MaxHeight,
		quality:   cfg.Normalize.JPEGQuality,
	}
}

// Normalize rewrites the file at path in place as a JPEG: applies the EXIF
// orientation, downscales to fit the configured bounds, and flattens any
// transparency onto a white background. Callers treat a returned error as
// non-fatal; the original file is left untouched on failure.
func (n *Normalizer) Normalize(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image %s: %w", path, err)
	}

	orientation := readOrientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image %s: %w", path, err)
	}

	img = applyOrientation(img, orientation)
	img = fitWithin(img, n.maxWidth, n.maxHeight)
	img = flattenOnWhite(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: n.quality}); err != nil {
		return fmt.Errorf("encode image %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write image %s: %w", path, err)
	}
	return nil
}

// fitWithin downscales img so both dimensions fit maxWidth x maxHeight,
// preserving aspect ratio. Images already within bounds pass through.
func fitWithin(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth && h <= maxHeight {
		return img
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), img, b, xdraw.Over, nil)
	return resized
}

// flattenOnWhite composites the image onto an opaque white background.
// JPEG has no alpha channel, so transparent regions become white.
func flattenOnWhite(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
