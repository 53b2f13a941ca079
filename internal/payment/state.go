// Package payment implements the payment-method lookup agent: parse a
// free-text question into a country and optional payment category, then
// answer from the payment-method table.
package payment

// ParsedQuery is the structured form of one user question, produced
// once per input and immutable afterwards.
type ParsedQuery struct {
	// CountryText is the raw country fragment, not yet normalized.
	CountryText string `json:"country_text"`

	// PaymentType is the optional category tag ("card", "bank", ...).
	// Empty means all categories.
	PaymentType string `json:"payment_type,omitempty"`
}

// Result is the structured answer for one question.
type Result struct {
	Country     *string  `json:"country"`
	PaymentType *string  `json:"payment_type"`
	Count       int      `json:"count"`
	Types       []string `json:"types"`
	Note        string   `json:"note"`
}

// State is the workflow state threaded through the parse and lookup
// steps.
type State struct {
	UserInput string       `json:"user_input"`
	Parsed    *ParsedQuery `json:"parsed_query,omitempty"`
	Result    *Result      `json:"result,omitempty"`
}
