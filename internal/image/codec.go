package image

import (
	"bytes"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"
)

// Decode accepts any format registered above.
func Decode(data []byte) (stdimage.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty body", ErrInvalidImage)
	}
	img, format, err := stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return img, format, nil
}

func EncodePNG(img stdimage.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to encode")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
