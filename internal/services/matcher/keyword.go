package matcher

import (
	"context"
	"strings"

	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/services/catalog"
)

// KeywordStrategy matches by containment of each offer's target phrases in
// the lowercased reason. Deterministic: the offer with the most phrase hits
// wins, ties broken by catalog order. Used when no reasoning service is
// configured, and by tests.
type KeywordStrategy struct{}

// NewKeywordStrategy creates the deterministic keyword strategy.
func NewKeywordStrategy() *KeywordStrategy {
	return &KeywordStrategy{}
}

// Match implements Strategy.
func (s *KeywordStrategy) Match(_ context.Context, reason string, cat *catalog.Catalog) (models.MatchDecision, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return models.NoMatch("cancellation reason is empty; requires manual review"), nil
	}

	lowered := strings.ToLower(trimmed)

	var best *models.Offer
	var bestHits int
	var bestPhrase string

	for i, offer := range cat.Offers() {
		hits := 0
		firstPhrase := ""
		for _, phrase := range offer.TargetReasons {
			if strings.Contains(lowered, strings.ToLower(phrase)) {
				hits++
				if firstPhrase == "" {
					firstPhrase = phrase
				}
			}
		}
		if hits > bestHits {
			best = &cat.Offers()[i]
			bestHits = hits
			bestPhrase = firstPhrase
		}
	}

	if best == nil {
		return models.NoMatch("the stated reason does not mention any concern our offers cover"), nil
	}

	return models.MatchDecision{
		OfferCode: best.Code,
		OfferName: best.Name,
		Reasoning: "the reason mentions \"" + bestPhrase + "\", which " + best.Name + " directly addresses",
	}, nil
}
