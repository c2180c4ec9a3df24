package constants

// ApprovalLevel identifies a step in the two-level approval chain.
type ApprovalLevel string

const (
	LevelOne             ApprovalLevel = "level_1"
	LevelTwo             ApprovalLevel = "level_2"
	LevelAdminOverride   ApprovalLevel = "admin_override"
	LevelFinanceOverride ApprovalLevel = "finance_override"
)

// ApprovalAction records what an approver did.
type ApprovalAction string

const (
	ActionApproved  ApprovalAction = "approved"
	ActionRejected  ApprovalAction = "rejected"
	ActionCancelled ApprovalAction = "cancelled"
)

// DocType identifies the kind of document attached to a purchase request.
type DocType string

const (
	DocTypeProforma DocType = "PROFORMA"
	DocTypeReceipt  DocType = "RECEIPT"
)

// DocTypes holds the allowed values for the document doc_type column.
var DocTypes = []string{string(DocTypeProforma), string(DocTypeReceipt)}
