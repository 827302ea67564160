package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// rawResult tolerates the looser JSON models actually emit: nulls for
// strings, quoted numbers, and a missing items array.
type rawResult struct {
	Action           *string    `json:"action"`
	SupplierName     *string    `json:"supplier_name"`
	TransactionDate  *string    `json:"transaction_date"`
	Items            []rawItem  `json:"items"`
	FollowUp         *string    `json:"follow_up_question"`
	SuggestedActions []*string  `json:"suggested_actions"`
	Confidence       *flexFloat `json:"confidence_score"`
}

type rawItem struct {
	ProductName *string    `json:"product_name"`
	Variant     *string    `json:"variant"`
	Qty         *flexFloat `json:"qty"`
	Unit        *string    `json:"unit"`
	TotalPrice  *flexFloat `json:"total_price"`
	Notes       *string    `json:"notes"`
}

// flexFloat accepts both 12.5 and "12.5".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if trimmed == "" || trimmed == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("extract: invalid number %q", trimmed)
	}
	*f = flexFloat(v)
	return nil
}

// ParseResult decodes a model completion into a Result. Markdown fences
// and stray prose around the JSON object are tolerated.
func ParseResult(content string) (Result, error) {
	payload := extractJSON(content)
	if payload == "" {
		return Result{}, fmt.Errorf("extract: no JSON object in completion")
	}
	var raw rawResult
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Result{}, fmt.Errorf("extract: decode completion: %w", err)
	}

	res := Result{
		Action:          deref(raw.Action),
		SupplierName:    deref(raw.SupplierName),
		TransactionDate: deref(raw.TransactionDate),
		FollowUp:        deref(raw.FollowUp),
		Items:           make([]Item, 0, len(raw.Items)),
	}
	if raw.Confidence != nil {
		res.Confidence = float64(*raw.Confidence)
	}
	for _, action := range raw.SuggestedActions {
		if action != nil && *action != "" {
			res.SuggestedActions = append(res.SuggestedActions, *action)
		}
	}
	for _, item := range raw.Items {
		name := strings.TrimSpace(deref(item.ProductName))
		if name == "" {
			continue
		}
		out := Item{
			ProductName: name,
			Variant:     strings.TrimSpace(deref(item.Variant)),
			Unit:        strings.TrimSpace(deref(item.Unit)),
			Notes:       strings.TrimSpace(deref(item.Notes)),
		}
		if item.Qty != nil {
			out.Qty = float64(*item.Qty)
		}
		if item.TotalPrice != nil {
			out.TotalPrice = float64(*item.TotalPrice)
		}
		res.Items = append(res.Items, out)
	}
	if res.Action == "" {
		res.Action = "chat"
	}
	return res, nil
}

// extractJSON returns the outermost {...} block of content, stripping
// markdown fences first.
func extractJSON(content string) string {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return ""
	}
	return cleaned[start : end+1]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
