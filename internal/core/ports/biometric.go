package ports

import (
	"context"

	"github.com/facegate/auth-system/internal/core/domain"
)

// TemplateEngine extracts and compares face templates. The concrete
// detector/encoder lives behind this interface so it can be swapped without
// touching the matching policy.
type TemplateEngine interface {
	// Extract derives a template from raw image bytes. It fails with
	// domain.ErrInvalidImage on undecodable or too-small payloads,
	// domain.ErrNoFaceDetected when no face is found, and
	// domain.ErrMultipleFacesDetected when more than one is.
	Extract(ctx context.Context, image []byte) (domain.Template, error)

	// Compare scores the similarity of two stored templates as a confidence
	// in [0,1]. It never fails: corrupt or mismatched templates score 0.
	Compare(enrolled, probe domain.Template) float64
}
