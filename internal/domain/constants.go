package domain

// Confidentiality levels, weakest to strongest.
const (
	ConfidentialityPublic       = "Public"
	ConfidentialityInternal     = "Internal"
	ConfidentialityConfidential = "Confidential"
	ConfidentialityRestricted   = "Restricted"
)

// confidentialityRank orders levels for comparisons; unknown levels rank
// highest so a typo never widens visibility.
var confidentialityRank = map[string]int{
	ConfidentialityPublic:       0,
	ConfidentialityInternal:     1,
	ConfidentialityConfidential: 2,
	ConfidentialityRestricted:   3,
}

func ConfidentialityRank(level string) int {
	if r, ok := confidentialityRank[level]; ok {
		return r
	}
	return len(confidentialityRank)
}

// ConfidentialityLevels lists all levels, weakest first.
var ConfidentialityLevels = []string{
	ConfidentialityPublic,
	ConfidentialityInternal,
	ConfidentialityConfidential,
	ConfidentialityRestricted,
}

// OCR pipeline stage labels.
const (
	OCRStatusPending        = "Pending"
	OCRStatusProcessing     = "Processing"
	OCRStatusCompleted      = "Completed"
	OCRStatusCompletedNoOCR = "Completed (No OCR)"
	OCRStatusFailed         = "Failed"
)

// Coarse document lifecycle.
const (
	StatusIntake          = "Intake"
	StatusPublished       = "Published"
	StatusArchived        = "Archived"
	StatusSoftDeleted     = "Soft_Deleted"
	StatusPendingDeletion = "Pending_Deletion"
)

// DocumentStatuses lists every lifecycle status a listing filter can name.
var DocumentStatuses = []string{
	StatusIntake,
	StatusPublished,
	StatusArchived,
	StatusSoftDeleted,
	StatusPendingDeletion,
}

// Approval workflow states.
const (
	ApprovalNotRequired      = "Not Required"
	ApprovalPending          = "Pending Approval"
	ApprovalApproved         = "Approved"
	ApprovalRejected         = "Rejected"
	ApprovalChangesRequested = "Changes Requested"
)

// Quality-control tiers assigned after extraction.
const (
	QCStatePassed   = "QC_Passed"
	QCStateRigorous = "Rigorous_QC"
)

// Document categories, in declaration order. Classification ties break to the
// earliest entry.
var Categories = []string{
	CategoryInvoice,
	CategoryContract,
	CategoryID,
	CategoryReport,
	CategoryHR,
	CategoryLegal,
	CategoryOther,
}

const (
	CategoryInvoice  = "Invoice"
	CategoryContract = "Contract"
	CategoryID       = "ID"
	CategoryReport   = "Report"
	CategoryHR       = "HR"
	CategoryLegal    = "Legal"
	CategoryOther    = "Other"
)

// Risk levels per category. Anything not listed Low is treated as High.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

var categoryRisk = map[string]string{
	CategoryInvoice:  RiskLow,
	CategoryReport:   RiskLow,
	CategoryContract: RiskHigh,
	CategoryID:       RiskHigh,
	CategoryHR:       RiskHigh,
	CategoryLegal:    RiskHigh,
	CategoryOther:    RiskMedium,
}

func RiskLevel(category string) string {
	if r, ok := categoryRisk[category]; ok {
		return r
	}
	return RiskHigh
}

// User roles.
const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleOperator = "Operator"
	RoleViewer   = "Viewer"
	RoleIntern   = "Intern"
)

// User scope kinds.
const (
	ScopeHolding    = "Holding"
	ScopeSubsidiary = "Subsidiary"
	ScopeDepartment = "Department"
)

// Approval policy match types.
const (
	MatchCategory        = "Category"
	MatchConfidentiality = "Confidentiality"
)

// Retention policy actions.
const (
	RetentionActionArchive = "Archive"
	RetentionActionDelete  = "Delete"
)

// Batch QC states.
const (
	BatchQCPending  = "Pending"
	BatchQCArchived = "Archived"
	BatchQCReturned = "Returned"
)

// Access request states.
const (
	AccessRequestPending  = "Pending"
	AccessRequestApproved = "Approved"
	AccessRequestRejected = "Rejected"
)
