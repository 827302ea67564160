// Package extract turns unstructured Indonesian chat text or receipt
// images into structured procurement data via an OpenAI-compatible
// chat-completions API.
package extract

import "context"

// Item is one extracted line item, in the purchase units the supplier
// quoted.
type Item struct {
	ProductName string  `json:"product_name"`
	Variant     string  `json:"variant,omitempty"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit,omitempty"`
	TotalPrice  float64 `json:"total_price"`
	Notes       string  `json:"notes,omitempty"`
}

// Result is the raw extraction payload before any reconciliation.
type Result struct {
	Action           string   `json:"action"`
	SupplierName     string   `json:"supplier_name,omitempty"`
	TransactionDate  string   `json:"transaction_date,omitempty"`
	Items            []Item   `json:"items"`
	FollowUp         string   `json:"follow_up_question,omitempty"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
	Confidence       float64  `json:"confidence_score"`
}

// Client extracts procurement data from raw user input. currentDraft is
// marshalled into the prompt as conversation context when non-nil, so
// the model can resolve follow-up turns against the in-flight draft.
type Client interface {
	ParseText(ctx context.Context, text string, currentDraft any) (Result, error)
	ParseImage(ctx context.Context, image []byte, currentDraft any) (Result, error)
}
