// Package composer drafts retention emails for matched offers.
package composer

import (
	"context"
	"strings"

	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/services/catalog"
	"customer-retention-engine/internal/utils"
)

// Signature is the fixed closing block for every retention email.
const Signature = "Best regards,\nThe Customer Team"

// Generator produces an email body for a matched offer. A returned error is
// degraded by the Composer into an error-marked draft.
type Generator interface {
	Generate(ctx context.Context, offer models.Offer, reason, customerEmail string) (string, error)
}

// Composer turns a match decision into an email draft. A no-match decision
// yields the "no email" sentinel unconditionally; generation failures yield a
// visibly error-marked draft instead of an error, so batch processing keeps
// going.
type Composer struct {
	catalog   *catalog.Catalog
	generator Generator
}

// New creates a composer with an explicit generator.
func New(cat *catalog.Catalog, generator Generator) *Composer {
	return &Composer{
		catalog:   cat,
		generator: generator,
	}
}

// Compose produces the draft for one record.
func (c *Composer) Compose(ctx context.Context, decision models.MatchDecision, reason, customerEmail string) models.EmailDraft {
	if !decision.IsMatch() {
		return models.NoEmail()
	}

	offer, err := c.catalog.Find(decision.OfferCode)
	if err != nil {
		// Run-time unreachable when the matcher did its job; guarded anyway
		// because the decision may arrive from outside the pipeline.
		return models.FailedDraft(err.Error())
	}

	body, err := c.generator.Generate(ctx, *offer, reason, customerEmail)
	if err != nil {
		utils.GetLogger().Warn("Email generation failed",
			utils.String("offer_code", offer.Code),
			utils.String("customer_email", customerEmail),
			utils.Error(err),
		)
		return models.FailedDraft(err.Error())
	}

	// The generation contract allows the service to decline with the
	// no-match literal; treat it the same as a no-match decision.
	if strings.TrimSpace(body) == models.NoMatchCode {
		return models.NoEmail()
	}

	return models.EmailDraft{Body: strings.TrimSpace(body)}
}
