// Package matcher selects retention offers for cancellation reasons.
package matcher

import (
	"context"

	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/services/catalog"
	"customer-retention-engine/internal/utils"
)

// Strategy produces a match decision for a cancellation reason. Errors are
// degraded by the Matcher; strategies never need to guard their own failures.
type Strategy interface {
	Match(ctx context.Context, reason string, cat *catalog.Catalog) (models.MatchDecision, error)
}

// Matcher wraps a strategy with the catalog-boundary guarantees: at most one
// offer, no fabricated codes, and failure degrades to no-match instead of
// propagating. Prefers no match over a wrong match.
type Matcher struct {
	catalog  *catalog.Catalog
	strategy Strategy
}

// New creates a matcher with an explicit strategy.
func New(cat *catalog.Catalog, strategy Strategy) *Matcher {
	return &Matcher{
		catalog:  cat,
		strategy: strategy,
	}
}

// Match produces the decision for one cancellation reason. Never fails: a
// strategy error or an out-of-catalog code both degrade to no-match with an
// explanatory reasoning string.
func (m *Matcher) Match(ctx context.Context, reason string) models.MatchDecision {
	decision, err := m.strategy.Match(ctx, reason, m.catalog)
	if err != nil {
		utils.GetLogger().Warn("Offer matching failed, degrading to no match",
			utils.Error(err),
		)
		return models.NoMatch("offer matching failed: " + err.Error())
	}

	if !decision.IsMatch() {
		if decision.Reasoning == "" {
			decision.Reasoning = "no offer addresses the stated cancellation reason"
		}
		return models.NoMatch(decision.Reasoning)
	}

	// The strategy's vocabulary is constrained to catalog entries plus the
	// no-match sentinel; anything else is rejected here.
	offer, err := m.catalog.Find(decision.OfferCode)
	if err != nil {
		utils.GetLogger().Warn("Strategy returned unknown offer code",
			utils.String("offer_code", decision.OfferCode),
		)
		return models.NoMatch("matching produced an offer code not present in the catalog: " + decision.OfferCode)
	}

	// Canonicalize the display name from the catalog entry.
	decision.OfferName = offer.Name
	return decision
}
