package diffing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

// SamplingGridSize is the maximum number of sample points per image axis used when precision is below 1.
const SamplingGridSize = 64

// ExactPrecision requires every pixel to agree.
const ExactPrecision = 1.0

const imageExtension = "png"

// ErrInvalidPrecision is returned when a precision is outside [0, 1].
var ErrInvalidPrecision = errors.New("precision must be between 0 and 1")

// ValidatePrecision ensures precision is a fraction between 0 and 1.
func ValidatePrecision(precision float64) error {
	if precision < 0 || precision > 1 || math.IsNaN(precision) {
		return fmt.Errorf("%w: got %v", ErrInvalidPrecision, precision)
	}

	return nil
}

// Image returns a DiffFunc for PNG payloads that reports Match when at least the given fraction of
// sampled pixels agree. Images with different dimensions never match.
func Image(precision float64) (snapshot.DiffFunc, error) {
	if err := ValidatePrecision(precision); err != nil {
		return nil, err
	}

	return func(reference, candidate snapshot.Format) snapshot.DiffResult {
		return compareImages(reference, candidate, precision)
	}, nil
}

// ExactImage is the Image DiffFunc with ExactPrecision.
func ExactImage(reference, candidate snapshot.Format) snapshot.DiffResult {
	return compareImages(reference, candidate, ExactPrecision)
}

// AgreementScore returns the fraction of sampled pixels that agree between two images of equal size.
func AgreementScore(expected, actual image.Image, precision float64) float64 {
	bounds := expected.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width == 0 || height == 0 {
		return 1
	}

	columns, rows := width, height
	if precision < ExactPrecision {
		columns, rows = min(width, SamplingGridSize), min(height, SamplingGridSize)
	}

	agreeing := 0

	for j := range rows {
		for i := range columns {
			x, y := i*width/columns, j*height/rows
			if pixelsAgree(expected, actual, x, y) {
				agreeing++
			}
		}
	}

	return float64(agreeing) / float64(columns*rows)
}

func compareImages(reference, candidate snapshot.Format, precision float64) snapshot.DiffResult {
	if reference.Equal(candidate) {
		return snapshot.Match()
	}

	attachments := snapshot.ExpectedAndActual(reference, candidate)

	expected, err := decode(reference)
	if err != nil {
		return snapshot.Mismatch(fmt.Sprintf("reference is not a decodable image: %v", err), attachments...)
	}

	actual, err := decode(candidate)
	if err != nil {
		return snapshot.Mismatch(fmt.Sprintf("candidate is not a decodable image: %v", err), attachments...)
	}

	expectedSize, actualSize := expected.Bounds().Size(), actual.Bounds().Size()
	if expectedSize != actualSize {
		return snapshot.Mismatch(
			fmt.Sprintf("expected image of size %dx%d, got %dx%d",
				expectedSize.X, expectedSize.Y, actualSize.X, actualSize.Y),
			attachments...,
		)
	}

	score := AgreementScore(expected, actual, precision)
	if score >= precision {
		return snapshot.Match()
	}

	if difference, ok := renderDifference(expected, actual); ok {
		attachments = append(attachments, snapshot.Attachment{Name: snapshot.AttachmentDifference, Format: difference})
	}

	return snapshot.Mismatch(
		fmt.Sprintf("images agree on %.2f%% of sampled pixels, required %.2f%%", score*100, precision*100),
		attachments...,
	)
}

func decode(format snapshot.Format) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(format.Bytes()))

	return img, err
}

func pixelsAgree(expected, actual image.Image, x, y int) bool {
	eb, ab := expected.Bounds(), actual.Bounds()
	er, eg, ebl, ea := expected.At(eb.Min.X+x, eb.Min.Y+y).RGBA()
	ar, ag, abl, aa := actual.At(ab.Min.X+x, ab.Min.Y+y).RGBA()

	return er == ar && eg == ag && ebl == abl && ea == aa
}

// renderDifference paints differing pixels red on a faded copy of the reference.
func renderDifference(expected, actual image.Image) (snapshot.Format, bool) {
	bounds := expected.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	marker := color.NRGBA{R: 0xff, A: 0xff}

	for y := range height {
		for x := range width {
			if !pixelsAgree(expected, actual, x, y) {
				out.SetNRGBA(x, y, marker)
				continue
			}

			gray := color.GrayModel.Convert(expected.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			faded := 0xff - (0xff-gray.Y)/4
			out.SetNRGBA(x, y, color.NRGBA{R: faded, G: faded, B: faded, A: 0xff})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return snapshot.Format{}, false
	}

	return snapshot.BinaryFormat(buf.Bytes(), imageExtension), true
}
