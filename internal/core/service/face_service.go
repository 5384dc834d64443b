package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
)

// DefaultMatchThreshold is the acceptance confidence the matcher was
// calibrated with.
const DefaultMatchThreshold = 0.6

// FaceService is the gallery matcher: it resolves a probe image to the
// enrolled account it matches, if any.
//
// Scan policy: enrolled templates are visited in stable creation order and
// the FIRST one whose confidence clears the threshold wins; the scan does
// not continue looking for a globally closer match. Near-duplicate
// enrollments therefore resolve to the earliest-enrolled account. Changing
// this to best-above-threshold changes accept behavior and must be a
// deliberate decision, not a refactor.
type FaceService struct {
	repo      ports.AccountRepository
	engine    ports.TemplateEngine
	threshold float64
	tokens    *TokenIssuer
	log       zerolog.Logger
}

func NewFaceService(repo ports.AccountRepository, engine ports.TemplateEngine, threshold float64, tokens *TokenIssuer, log zerolog.Logger) *FaceService {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}
	return &FaceService{repo: repo, engine: engine, threshold: threshold, tokens: tokens, log: log}
}

// AuthenticateFace extracts a probe template from the image and scans the
// gallery. Extraction failures (undecodable image, zero or multiple faces)
// fail the whole operation so the caller can surface a capture-quality
// error; only a clean probe that matches nobody is domain.ErrNoMatch.
//
// Comparison inside the scan never aborts it: one corrupt enrolled row
// scores 0 and the scan moves on.
func (s *FaceService) AuthenticateFace(ctx context.Context, image []byte) (string, *domain.Account, error) {
	probe, err := s.engine.Extract(ctx, image)
	if err != nil {
		return "", nil, err
	}

	enrolled, err := s.repo.ListEnrolled(ctx)
	if err != nil {
		return "", nil, err
	}

	for _, account := range enrolled {
		confidence := s.engine.Compare(account.Template, probe)
		if confidence >= s.threshold {
			s.log.Info().
				Str("account_id", account.ID).
				Float64("confidence", confidence).
				Msg("face match accepted")

			token, err := s.tokens.Issue(account)
			if err != nil {
				return "", nil, err
			}
			return token, account, nil
		}
	}

	s.log.Debug().Int("gallery_size", len(enrolled)).Msg("probe matched no enrolled template")
	return "", nil, domain.ErrNoMatch
}
