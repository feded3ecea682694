package transform

import (
	"image"
	"io"

	// gif, jpeg and png come from the standard library; bmp and tiff are registered by imaging.
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"gitlab.com/tozd/go/errors"
)

// Decode reads a jpeg, png, gif (first frame), bmp, tiff or webp image.
// EXIF orientation is not applied; pages are used as stored.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, errors.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// EncodeJPEG writes img as a baseline JPEG at quality 1-100.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		return errors.Errorf("jpeg quality must be between 1 and 100, got %d", quality)
	}
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return errors.Errorf("encoding jpeg: %w", err)
	}
	return nil
}
