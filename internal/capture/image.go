package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"animalrescue/pkg/types"
)

const (
	// JPEGQuality is the fixed compression quality of every captured photo.
	JPEGQuality = 80

	ContentType = "image/jpeg"
	Extension   = ".jpg"
)

// Image is a captured photo in the fixed upload format.
type Image struct {
	Data        []byte
	ContentType string
}

func (i *Image) Empty() bool {
	return i == nil || len(i.Data) == 0
}

// Encode compresses img into the fixed upload format.
func Encode(img image.Image) (*Image, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &Image{Data: buf.Bytes(), ContentType: ContentType}, nil
}

// FromReader decodes an uploaded photo (JPEG, PNG or GIF) and re-encodes it in
// the fixed upload format.
func FromReader(r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode photo: %w", types.ErrCaptureUnavailable, err)
	}

	return Encode(img)
}
