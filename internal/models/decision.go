// Package models defines the data structures for the customer retention engine.
package models

// MatchDecision is the outcome of matching a cancellation reason against the
// offer catalog. Produced exactly once per record. OfferCode is either a valid
// catalog code or NoMatchCode; the matcher never fabricates codes.
type MatchDecision struct {
	OfferCode string `json:"offer_code"`
	OfferName string `json:"offer_name"`
	Reasoning string `json:"reasoning"`
}

// IsMatch reports whether the decision selected a real offer.
func (d MatchDecision) IsMatch() bool {
	return d.OfferCode != NoMatchCode && d.OfferCode != ""
}

// NoMatch builds the no-match decision with an explanatory reasoning string.
func NoMatch(reasoning string) MatchDecision {
	return MatchDecision{
		OfferCode: NoMatchCode,
		OfferName: "None",
		Reasoning: reasoning,
	}
}

// EmailDraft is a generated retention email body, the "no email" sentinel
// (zero value), or an error-marked draft when generation failed.
type EmailDraft struct {
	Body   string `json:"body"`
	Failed bool   `json:"failed,omitempty"`
}

// Empty reports whether this is the "no email to send" sentinel.
func (d EmailDraft) Empty() bool {
	return d.Body == "" && !d.Failed
}

// NoEmail returns the sentinel draft used when no offer matched.
func NoEmail() EmailDraft {
	return EmailDraft{}
}

// FailedDraft returns a draft carrying a visible generation-error marker so
// display and export can show the failure without aborting the batch.
func FailedDraft(reason string) EmailDraft {
	return EmailDraft{
		Body:   "[email generation failed: " + reason + "]",
		Failed: true,
	}
}
