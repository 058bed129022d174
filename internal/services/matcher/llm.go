package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/services/catalog"
	"customer-retention-engine/internal/services/llm"
)

const matcherSystemPrompt = `ROLE: You are an offer matching specialist for customer retention.

TASK: Match customer cancellation reasons with appropriate retention offers from our available inventory.

INPUT: You will receive:
- A customer's cancellation reason (text explanation)
- Access to our retention offers database

OUTPUT: Provide your response in this exact JSON format:
{
    "OFFER_CODE": "the offer code" OR "NO_MATCH",
    "OFFER_NAME": "the offer name" OR "None",
    "MATCH_REASONING": "1-2 sentences explaining why this offer addresses their concern, or why no match exists"
}

CONSTRAINTS:
- Only recommend offers that directly address the customer's stated cancellation reason
- Never recommend multiple offers - select only the single best match
- If the cancellation reason is vague, return NO_MATCH rather than guessing
- Do not create or modify offer codes - only use existing ones from the database

PROCESS:
1. Analyze the customer's cancellation reason to identify the core issue (price, features, service quality, competitor, etc.)
2. Compare the cancellation reason against each offer's intended purpose
3. Select the offer that most directly resolves their specific concern
4. If no offer addresses their reason (e.g., they're moving countries and we don't service that area), return NO_MATCH`

// llmDecision is the strict schema expected from the reasoning service.
// Anything that does not parse into this shape degrades to no-match.
type llmDecision struct {
	OfferCode string `json:"OFFER_CODE"`
	OfferName string `json:"OFFER_NAME"`
	Reasoning string `json:"MATCH_REASONING"`
}

// LLMStrategy matches via the reasoning service using the offer catalog text
// as context.
type LLMStrategy struct {
	client *llm.Client
}

// NewLLMStrategy creates the reasoning-service-backed strategy.
func NewLLMStrategy(client *llm.Client) *LLMStrategy {
	return &LLMStrategy{client: client}
}

// Match implements Strategy.
func (s *LLMStrategy) Match(ctx context.Context, reason string, cat *catalog.Catalog) (models.MatchDecision, error) {
	userMessage := fmt.Sprintf(`Please find the best retention offer for this customer.

CANCELLATION REASON: %s

%s

Follow your process to analyze this reason and return your recommendation in the specified JSON format.`, reason, cat.Render())

	content, err := s.client.Complete(ctx, llm.CompletionRequest{
		System:      matcherSystemPrompt,
		User:        userMessage,
		Temperature: 0.3,
		JSONObject:  true,
	})
	if err != nil {
		return models.MatchDecision{}, err
	}

	return parseDecision(content)
}

// parseDecision validates the raw reasoning-service output into a
// MatchDecision at the boundary. The decision schema is strict: a missing
// offer code is a schema violation, not an implicit no-match.
func parseDecision(content string) (models.MatchDecision, error) {
	// Tolerate prose around the JSON object.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return models.MatchDecision{}, fmt.Errorf("no JSON object in response")
	}

	var decoded llmDecision
	if err := json.Unmarshal([]byte(content[start:end+1]), &decoded); err != nil {
		return models.MatchDecision{}, fmt.Errorf("failed to parse decision JSON: %w", err)
	}

	if strings.TrimSpace(decoded.OfferCode) == "" {
		return models.MatchDecision{}, fmt.Errorf("decision missing OFFER_CODE")
	}

	return models.MatchDecision{
		OfferCode: strings.TrimSpace(decoded.OfferCode),
		OfferName: strings.TrimSpace(decoded.OfferName),
		Reasoning: decoded.Reasoning,
	}, nil
}
