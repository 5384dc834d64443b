// Package biometric implements the face template engine: locating faces in
// an image, encoding the single enrolled face into a fixed-size descriptor,
// and scoring template similarity.
//
// The concrete detector and encoder are pluggable. Matching policy
// (thresholds, scan order) does not live here; it belongs to the gallery
// matcher in the service layer.
package biometric

import (
	"bytes"
	"context"
	"image"

	// Camera captures arrive as JPEG or PNG.
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"

	"github.com/facegate/auth-system/internal/core/domain"
)

// minImageBytes rejects obviously-empty payloads before decode.
const minImageBytes = 1024

// Detector locates faces in a decoded image.
type Detector interface {
	DetectFaces(img image.Image) ([]image.Rectangle, error)
}

// Encoder derives a fixed-size descriptor for one face region.
type Encoder interface {
	Encode(img image.Image, face image.Rectangle) ([]float64, error)
}

// Engine composes a detector and an encoder into the template contract used
// by enrollment and the gallery matcher.
type Engine struct {
	detector Detector
	encoder  Encoder
	log      zerolog.Logger
}

func NewEngine(detector Detector, encoder Encoder, log zerolog.Logger) *Engine {
	return &Engine{detector: detector, encoder: encoder, log: log}
}

// Extract derives a template from raw image bytes. It succeeds only when the
// image decodes and contains exactly one face.
func (e *Engine) Extract(ctx context.Context, imageBytes []byte) (domain.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(imageBytes) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, domain.ErrInvalidImage
	}

	faces, err := e.detector.DetectFaces(img)
	if err != nil {
		e.log.Error().Err(err).Msg("face detection failed")
		return nil, domain.ErrInvalidImage
	}
	switch {
	case len(faces) == 0:
		return nil, domain.ErrNoFaceDetected
	case len(faces) > 1:
		return nil, domain.ErrMultipleFacesDetected
	}

	descriptor, err := e.encoder.Encode(img, faces[0])
	if err != nil {
		e.log.Error().Err(err).Msg("face encoding failed")
		return nil, domain.ErrInvalidImage
	}

	return domain.NewTemplate(descriptor), nil
}

// Compare scores two stored templates. It is a predicate used inside
// security-sensitive gallery scans and therefore never fails: a template
// that does not decode, or whose dimensionality differs, scores 0.
func (e *Engine) Compare(enrolled, probe domain.Template) float64 {
	a, err := enrolled.Decode()
	if err != nil {
		e.log.Warn().Err(err).Msg("enrolled template did not decode, scoring no-match")
		return 0
	}
	b, err := probe.Decode()
	if err != nil {
		return 0
	}
	return domain.Similarity(a, b)
}
