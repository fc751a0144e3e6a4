package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// Preprocessor is one step of the image cleanup pipeline run before OCR.
type Preprocessor interface {
	Process(img image.Image) (image.Image, error)
}

type grayscale struct{}

func (grayscale) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

type contrast struct{ percent float64 }

func (c contrast) Process(img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, c.percent), nil
}

type sharpen struct{ sigma float64 }

func (s sharpen) Process(img image.Image) (image.Image, error) {
	return imaging.Sharpen(img, s.sigma), nil
}

// defaultPreprocessors is the standard cleanup chain for scanned pages.
func defaultPreprocessors() []Preprocessor {
	return []Preprocessor{
		grayscale{},
		contrast{percent: 15},
		sharpen{sigma: 0.8},
	}
}

// prepareImage decodes raw image bytes, runs the preprocessing chain and
// re-encodes the result as JPEG for the OCR engine.
func prepareImage(data []byte, steps []Preprocessor) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	for _, step := range steps {
		if img, err = step.Process(img); err != nil {
			return nil, fmt.Errorf("image preprocessing failed: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
