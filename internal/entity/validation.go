package entity

// ValidationResult is the outcome of checking a receipt against a purchase
// order. It is derived data, embedded in the owning request, never stored on
// its own.
type ValidationResult struct {
	IsValid     bool         `json:"is_valid"`
	Errors      []string     `json:"errors"`
	Warnings    []string     `json:"warnings"`
	VendorMatch bool         `json:"vendor_match"`
	AmountMatch bool         `json:"amount_match"`
	ItemsMatch  bool         `json:"items_match"`
	ReceiptData DocumentData `json:"receipt_data"`
}
