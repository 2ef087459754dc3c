package strategies

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
)

// ErrNilImage is returned when the image strategy receives a nil image.
var ErrNilImage = errors.New("image must not be nil")

const imageExtension = "png"

// Image snapshots an image as PNG and requires every pixel to match.
var Image = snapshot.Strategy[image.Image]{
	Name:          "image",
	PathExtension: imageExtension,
	Kind:          snapshot.KindBinary,
	Snapshot:      snapshot.Sync(encodePNG),
	Diff:          diffing.ExactImage,
}

// ImageWithPrecision is Image with a tolerance: it matches when at least the given fraction of
// sampled pixels agree. Precision must be between 0 and 1.
func ImageWithPrecision(precision float64) (snapshot.Strategy[image.Image], error) {
	diff, err := diffing.Image(precision)
	if err != nil {
		return snapshot.Strategy[image.Image]{}, err
	}

	strategy := Image
	strategy.Diff = diff

	return strategy, nil
}

func encodePNG(subject image.Image) (snapshot.Format, error) {
	if subject == nil {
		return snapshot.Format{}, ErrNilImage
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, subject); err != nil {
		return snapshot.Format{}, errors.Join(ErrEncodingFailed, err)
	}

	return snapshot.BinaryFormat(buf.Bytes(), imageExtension), nil
}
