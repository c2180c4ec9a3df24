package entity

// LineItem is a single item row recovered from a document.
// It has no identity of its own; it always belongs to a DocumentData.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// DocumentData holds the structured fields extracted from a proforma or
// receipt. It is created once per document submission and never mutated;
// resubmitting a document replaces it wholesale.
//
// Amount is nil only when no numeric total could be located in the text.
type DocumentData struct {
	Vendor        string     `json:"vendor"`
	Amount        *float64   `json:"amount"`
	Items         []LineItem `json:"items"`
	Terms         string     `json:"terms"`
	ExtractedText string     `json:"extracted_text"`
	Error         string     `json:"error,omitempty"`
}

// POItem is a purchase-order line generated from a request item.
type POItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// POApproval records one approval that authorized the purchase order.
type POApproval struct {
	Level    string `json:"level"`
	Approver string `json:"approver"`
	Date     string `json:"date"`
}

// PurchaseOrderData is the document generated once a request is fully
// approved. It authorizes payment and is what receipts are validated against.
type PurchaseOrderData struct {
	PONumber   string       `json:"po_number"`
	RequestID  string       `json:"request_id"`
	Vendor     string       `json:"vendor"`
	Amount     float64      `json:"amount"`
	Items      []POItem     `json:"items"`
	Terms      string       `json:"terms"`
	CreatedAt  string       `json:"created_at"`
	ApprovedBy []POApproval `json:"approved_by"`
}
