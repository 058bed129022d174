// Package catalog provides the static retention offer catalog.
package catalog

import (
	"fmt"
	"strings"

	"customer-retention-engine/internal/models"
)

// Catalog is a read-only set of retention offers. Loaded once at process
// start; safe for concurrent readers.
type Catalog struct {
	offers []models.Offer
	byCode map[string]*models.Offer
}

// New builds a catalog from the given offers. Offer codes must be non-empty
// and pairwise distinct.
func New(offers []models.Offer) (*Catalog, error) {
	c := &Catalog{
		offers: offers,
		byCode: make(map[string]*models.Offer, len(offers)),
	}

	for i := range offers {
		code := offers[i].Code
		if strings.TrimSpace(code) == "" {
			return nil, fmt.Errorf("offer %d: empty offer code", i)
		}
		if _, exists := c.byCode[code]; exists {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateOfferCode, code)
		}
		c.byCode[code] = &offers[i]
	}

	return c, nil
}

// Default returns the catalog of retention offers. In production this would
// come from a product team feed; the content is fixed per release.
func Default() *Catalog {
	c, err := New([]models.Offer{
		{
			Code:          "PRICE_DISC_20",
			Name:          "20% Discount for 6 Months",
			Description:   "20% discount on subscription for the next 6 months",
			TargetReasons: []string{"too expensive", "price", "cost", "budget", "affordability"},
		},
		{
			Code:          "PRICE_DISC_30",
			Name:          "30% Discount for 3 Months",
			Description:   "30% discount on subscription for the next 3 months",
			TargetReasons: []string{"too expensive", "price", "cost", "budget", "affordability", "expensive"},
		},
		{
			Code:          "FEATURE_UPGRADE",
			Name:          "Free Feature Upgrade",
			Description:   "Upgrade to premium tier with additional features at no extra cost",
			TargetReasons: []string{"missing features", "need more features", "limited functionality", "features"},
		},
		{
			Code:          "TRIAL_EXTEND",
			Name:          "Extended Free Trial",
			Description:   "Additional 30 days free trial to explore the platform",
			TargetReasons: []string{"not sure", "need more time", "trial", "testing", "evaluating"},
		},
		{
			Code:          "SUPPORT_PRIORITY",
			Name:          "Priority Support Access",
			Description:   "Dedicated support team and faster response times",
			TargetReasons: []string{"support", "customer service", "help", "assistance", "response time"},
		},
		{
			Code:          "CUSTOM_SOLUTION",
			Name:          "Custom Solution Consultation",
			Description:   "Free consultation to create a customized solution for your needs",
			TargetReasons: []string{"doesn't fit", "not suitable", "custom", "specific needs", "requirements"},
		},
	})
	if err != nil {
		// The default catalog is compile-time data; a construction failure
		// is a programming error.
		panic(err)
	}
	return c
}

// Find looks up an offer by code.
func (c *Catalog) Find(code string) (*models.Offer, error) {
	offer, ok := c.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrOfferNotFound, code)
	}
	return offer, nil
}

// Contains reports whether the code names a real catalog entry.
func (c *Catalog) Contains(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Offers returns the offers in catalog order.
func (c *Catalog) Offers() []models.Offer {
	return c.offers
}

// Render produces the textual catalog listing consumed by the matcher's
// reasoning prompt.
func (c *Catalog) Render() string {
	var b strings.Builder
	b.WriteString("AVAILABLE RETENTION OFFERS:\n\n")
	for _, offer := range c.offers {
		fmt.Fprintf(&b, "OFFER_CODE: %s\n", offer.Code)
		fmt.Fprintf(&b, "OFFER_NAME: %s\n", offer.Name)
		fmt.Fprintf(&b, "DESCRIPTION: %s\n", offer.Description)
		fmt.Fprintf(&b, "TARGET_REASONS: %s\n", strings.Join(offer.TargetReasons, ", "))
		b.WriteString("\n---\n\n")
	}
	return b.String()
}
