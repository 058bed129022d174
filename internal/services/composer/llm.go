package composer

import (
	"context"
	"fmt"

	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/services/llm"
)

const composerSystemPrompt = `ROLE: You are an email writer for customer retention.

TASK: Write a brief, friendly email to convince customers to stay using a matched offer.

INPUT:
- Matched offer (or "NO_MATCH")
- Customer's cancellation reason
- Customer email

OUTPUT:
- If offer is "NO_MATCH": return only "NO_MATCH"
- If offer exists: write a 100-150 word email (no subject line)

CONSTRAINTS:
- Start with the Hey Customer_Name (you can extract it from the email):
- Acknowledge their cancellation reason
- Explain how the offer solves their problem
- End with: "Best regards,\nThe Customer Team"
- Be warm and professional, not pushy
- Include a clear next step for them to take

STRUCTURE:
1. Friendly greeting
2. Acknowledge their concern (1 sentence)
3. Present the offer as a solution (2-3 sentences)
4. Call-to-action (1 sentence)
5. Signature`

// LLMGenerator writes the retention email via the reasoning service.
type LLMGenerator struct {
	client *llm.Client
}

// NewLLMGenerator creates the reasoning-service-backed generator.
func NewLLMGenerator(client *llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// Generate implements Generator.
func (g *LLMGenerator) Generate(ctx context.Context, offer models.Offer, reason, customerEmail string) (string, error) {
	userMessage := fmt.Sprintf(`Write a retention email:

Matched offer: %s - %s (%s)
Cancellation reason: %s
Customer email: %s`, offer.Code, offer.Name, offer.Description, reason, customerEmail)

	return g.client.Complete(ctx, llm.CompletionRequest{
		System:      composerSystemPrompt,
		User:        userMessage,
		Temperature: 0.7,
	})
}
