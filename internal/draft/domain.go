// Package draft models the transient, conversational procurement draft and
// decides how newly extracted line items reconcile against it.
package draft

// Action tags the conversational state a draft is in. The pending payload
// pointers are populated only for their matching action: Merge is non-nil
// iff the action is ActionMergeConfirm, Supplier iff ActionSupplierConfirm.
type Action string

const (
	// ActionNew starts a fresh draft from the extracted items.
	ActionNew Action = "new"
	// ActionAppend carries only the newly accepted items; the caller adds
	// them to its draft.
	ActionAppend Action = "append"
	// ActionUpdate carries the complete replacement item list.
	ActionUpdate Action = "update"
	// ActionDelete carries the exact item to remove.
	ActionDelete Action = "delete"
	// ActionChat is a conversational reply with no data change.
	ActionChat Action = "chat"
	// ActionClarify asks the user to resolve missing or ambiguous data.
	ActionClarify Action = "clarify"
	// ActionMergeConfirm waits for the user to merge a duplicate line or
	// keep it separate.
	ActionMergeConfirm Action = "merge_confirm"
	// ActionSupplierConfirm waits for the user to confirm a similar
	// known counterparty.
	ActionSupplierConfirm Action = "supplier_confirm"
)

// Item is one candidate line of a draft. Qty and Unit are in purchase
// units as stated by the user or OCR; UnitPrice and TotalPrice are zero
// when unknown.
type Item struct {
	ProductName string  `json:"product_name"`
	Variant     string  `json:"variant,omitempty"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price,omitempty"`
	TotalPrice  float64 `json:"total_price"`
	Notes       string  `json:"notes,omitempty"`
}

// MergeCandidate holds everything needed to later merge a duplicate line
// into the draft or insert it as a new one.
type MergeCandidate struct {
	ExistingIndex int  `json:"existing_index"`
	Existing      Item `json:"existing"`
	Incoming      Item `json:"incoming"`
}

// SupplierCandidate describes a similar-but-not-identical known
// counterparty awaiting user confirmation.
type SupplierCandidate struct {
	NewName      string `json:"new_name"`
	ExistingName string `json:"existing_name"`
	Phone        string `json:"phone,omitempty"`
	Score        int    `json:"score"`
}

// Draft is the in-progress, user-visible transaction candidate. It is
// owned by the calling conversation session; functions in this package
// treat it as immutable input and return a new value.
type Draft struct {
	Action          Action             `json:"action"`
	SupplierName    string             `json:"supplier_name,omitempty"`
	SupplierPhone   string             `json:"supplier_phone,omitempty"`
	SupplierAddress string             `json:"supplier_address,omitempty"`
	TransactionDate string             `json:"transaction_date,omitempty"`
	ReceiptNumber   string             `json:"receipt_number,omitempty"`
	Items           []Item             `json:"items"`
	Subtotal        float64            `json:"subtotal,omitempty"`
	Discount        float64            `json:"discount,omitempty"`
	Total           float64            `json:"total,omitempty"`
	PaymentMethod   string             `json:"payment_method,omitempty"`
	FollowUp        string             `json:"follow_up_question,omitempty"`
	SuggestedAction []string           `json:"suggested_actions,omitempty"`
	Merge           *MergeCandidate    `json:"merge_candidate,omitempty"`
	Supplier        *SupplierCandidate `json:"supplier_candidate,omitempty"`
	Confidence      float64            `json:"confidence_score"`
}

// Clone returns a deep copy so resolver stages never alias the caller's
// draft.
func (d Draft) Clone() Draft {
	out := d
	out.Items = append([]Item(nil), d.Items...)
	out.SuggestedAction = append([]string(nil), d.SuggestedAction...)
	if d.Merge != nil {
		m := *d.Merge
		out.Merge = &m
	}
	if d.Supplier != nil {
		s := *d.Supplier
		out.Supplier = &s
	}
	return out
}

// Display renders an item label the way the chat UI shows it.
func (i Item) Display() string {
	if i.Variant == "" {
		return i.ProductName
	}
	return i.ProductName + " (" + i.Variant + ")"
}
