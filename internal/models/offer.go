// Package models defines the data structures for the customer retention engine.
package models

// NoMatchCode is the sentinel offer code meaning no retention offer applies.
const NoMatchCode = "NO_MATCH"

// Offer represents a retention offer from the static catalog.
type Offer struct {
	Code          string   `json:"offer_code"`
	Name          string   `json:"offer_name"`
	Description   string   `json:"description"`
	TargetReasons []string `json:"target_reasons"`
}

// OfferSummary is a lightweight view for display purposes.
type OfferSummary struct {
	Code        string `json:"offer_code"`
	Name        string `json:"offer_name"`
	Description string `json:"description"`
}

// ToSummary converts an Offer to OfferSummary.
func (o *Offer) ToSummary() OfferSummary {
	return OfferSummary{
		Code:        o.Code,
		Name:        o.Name,
		Description: o.Description,
	}
}
