package payment

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
)

const parseSystemPrompt = `You are a payment method query parser. Parse the user's message to extract:
1. Country name (required) - can be in any format
2. Payment type (optional) - one of: "card", "bank", "wallet", "ewallet", "on-screen QR", "card_redirect", "card_to_card", "cash_redirect", "pos"

The user might say things like:
- "US card" (country: US, payment_type: card)
- "United Kingdom" (country: United Kingdom, payment_type: null)
- "Please list bank methods for br" (country: br, payment_type: bank)

Respond ONLY with a JSON object in this exact format:
{"country_text": "extracted country text", "payment_type": "card|bank|null"}

If no clear country is found, use an empty string for country_text.
Payment type synonyms: credit/debit -> card, transfer/bank transfer -> bank`

// categoryPatterns maps a category tag to the phrases that imply it.
// First match wins, in this order.
var categoryPatterns = []struct {
	category string
	patterns []*regexp.Regexp
}{
	{"card", []*regexp.Regexp{
		regexp.MustCompile(`\bcard\b`),
		regexp.MustCompile(`\bcredit\b`),
		regexp.MustCompile(`\bdebit\b`),
	}},
	{"bank", []*regexp.Regexp{
		regexp.MustCompile(`\bbank\b`),
		regexp.MustCompile(`\btransfer\b`),
	}},
}

// fillerWords are stripped from the message to isolate the country
// fragment.
var fillerWords = []string{
	"card", "credit", "debit", "bank", "transfer",
	"methods", "for", "list", "please", "show", "get",
}

var (
	fillerPatterns = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(fillerWords))
		for i, w := range fillerWords {
			out[i] = regexp.MustCompile(`\b` + w + `\b`)
		}
		return out
	}()
	nonWordPattern = regexp.MustCompile(`[^\w\s]`)
)

// ParseFallback extracts a ParsedQuery with pattern matching alone, used
// when the model parse is unavailable or returns garbage.
func ParseFallback(message string) ParsedQuery {
	message = strings.ToLower(strings.TrimSpace(message))
	if message == "" {
		return ParsedQuery{}
	}

	var category string
	for _, group := range categoryPatterns {
		for _, p := range group.patterns {
			if p.MatchString(message) {
				category = group.category
				break
			}
		}
		if category != "" {
			break
		}
	}

	countryText := message
	for _, p := range fillerPatterns {
		countryText = p.ReplaceAllString(countryText, "")
	}
	countryText = nonWordPattern.ReplaceAllString(countryText, "")
	countryText = strings.Join(strings.Fields(countryText), " ")

	return ParsedQuery{CountryText: countryText, PaymentType: category}
}

// Parse asks the model to structure the message in JSON mode and falls
// back to pattern matching on any failure.
func Parse(ctx context.Context, client llm.Client, model, message string) ParsedQuery {
	if client == nil {
		return ParseFallback(message)
	}

	resp, err := client.Complete(ctx, llm.Request{
		Model:        model,
		SystemPrompt: parseSystemPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: message}},
		Temperature:  0.1,
		MaxTokens:    100,
		ForceJSON:    true,
	})
	if err != nil {
		return ParseFallback(message)
	}

	var parsed struct {
		CountryText string `json:"country_text"`
		PaymentType string `json:"payment_type"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return ParseFallback(message)
	}
	if parsed.PaymentType == "null" {
		parsed.PaymentType = ""
	}
	return ParsedQuery{CountryText: parsed.CountryText, PaymentType: parsed.PaymentType}
}
