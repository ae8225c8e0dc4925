package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
)

// Thumbnail decodes the image at path, downscales it to fit a box x box
// square (never upscales), and returns JPEG bytes. The result is computed
// on every call; nothing is cached.
func (n *Normalizer) Thumbnail(path string, box int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	img = fitWithin(img, box, box)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattenOnWhite(img), &jpeg.Options{Quality: n.quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
