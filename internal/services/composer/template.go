package composer

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"customer-retention-engine/internal/models"
)

// emailTemplate mirrors the structure the reasoning service is instructed to
// produce: greeting, one-sentence acknowledgment, the offer as the solution,
// a call to action, and the fixed signature.
const emailTemplate = `Hey {{.Name}},

We're sorry to hear you're considering leaving us{{if .Reason}} because of {{.Reason}}{{end}}, and we completely understand your concern.

The good news is we'd like to offer you our {{.OfferName}}: {{.OfferDescription}}. We think this directly addresses what's been holding you back, and we'd love the chance to show you the difference it makes.

Just reply to this email and we'll apply the offer to your account right away.

{{.Signature}}`

// TemplateGenerator renders a deterministic retention email. Used when no
// reasoning service is configured, and by tests.
type TemplateGenerator struct {
	tmpl *template.Template
}

// NewTemplateGenerator creates the deterministic generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{
		tmpl: template.Must(template.New("retention_email").Parse(emailTemplate)),
	}
}

// Generate implements Generator.
func (g *TemplateGenerator) Generate(_ context.Context, offer models.Offer, reason, customerEmail string) (string, error) {
	data := struct {
		Name             string
		Reason           string
		OfferName        string
		OfferDescription string
		Signature        string
	}{
		Name:             models.EmailLocalPart(customerEmail),
		Reason:           summarizeReason(reason),
		OfferName:        offer.Name,
		OfferDescription: lowerFirst(offer.Description),
		Signature:        Signature,
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// summarizeReason trims the stated reason into something that reads inside a
// sentence. Long reasons are cut at the first sentence boundary.
func summarizeReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	trimmed = strings.TrimSuffix(trimmed, ".")
	if idx := strings.IndexAny(trimmed, ".!?"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	return lowerFirst(trimmed)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
