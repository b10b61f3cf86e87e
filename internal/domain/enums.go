package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeDOC  FileType = "doc"
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
	FileTypePPTX FileType = "pptx"
	FileTypePPT  FileType = "ppt"
	FileTypeTXT  FileType = "txt"
	FileTypeCSV  FileType = "csv"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
)

// AllowedFileTypes maps FileType to its canonical MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypeDOC:  "application/msword",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeXLS:  "application/vnd.ms-excel",
	FileTypePPTX: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	FileTypePPT:  "application/vnd.ms-powerpoint",
	FileTypeTXT:  "text/plain",
	FileTypeCSV:  "text/csv",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"docx": FileTypeDOCX,
	"doc":  FileTypeDOC,
	"xlsx": FileTypeXLSX,
	"xls":  FileTypeXLS,
	"pptx": FileTypePPTX,
	"ppt":  FileTypePPT,
	"txt":  FileTypeTXT,
	"csv":  FileTypeCSV,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// UserRole defines what a user may access.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// SubscriptionTier is a profile attribute shown on the dashboard.
type SubscriptionTier string

const (
	TierStarter      SubscriptionTier = "starter"
	TierProfessional SubscriptionTier = "professional"
	TierEnterprise   SubscriptionTier = "enterprise"
)

// ValidSubscriptionTiers is the set of accepted tiers.
var ValidSubscriptionTiers = map[SubscriptionTier]bool{
	TierStarter:      true,
	TierProfessional: true,
	TierEnterprise:   true,
}

// AnalysisType selects which analysis the LLM performs.
type AnalysisType string

const (
	AnalysisSentiment      AnalysisType = "sentiment"
	AnalysisEntities       AnalysisType = "entities"
	AnalysisSummary        AnalysisType = "summary"
	AnalysisClassification AnalysisType = "classification"
	AnalysisTranslation    AnalysisType = "translation"
	AnalysisKeywords       AnalysisType = "keywords"
	AnalysisComprehensive  AnalysisType = "comprehensive"
)

// ValidAnalysisTypes is the set of accepted analysis types.
var ValidAnalysisTypes = map[AnalysisType]bool{
	AnalysisSentiment:      true,
	AnalysisEntities:       true,
	AnalysisSummary:        true,
	AnalysisClassification: true,
	AnalysisTranslation:    true,
	AnalysisKeywords:       true,
	AnalysisComprehensive:  true,
}

// OrderPriority affects price.
type OrderPriority string

const (
	PriorityStandard OrderPriority = "standard"
	PriorityUrgent   OrderPriority = "urgent"
)

// OrderStatus represents the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusUploaded   OrderStatus = "uploaded"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatuses is the set of accepted order statuses for filtering.
var ValidOrderStatuses = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusPaid:       true,
	OrderStatusUploaded:   true,
	OrderStatusProcessing: true,
	OrderStatusCompleted:  true,
	OrderStatusFailed:     true,
	OrderStatusCancelled:  true,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
)

// AnalysisStatus represents the lifecycle of a single document analysis.
type AnalysisStatus string

const (
	AnalysisStatusQueued     AnalysisStatus = "queued"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// OrderAuditAction identifies an entry in an order's audit trail.
type OrderAuditAction string

const (
	AuditOrderCreated        OrderAuditAction = "order.created"
	AuditOrderUpdated        OrderAuditAction = "order.updated"
	AuditOrderCancelled      OrderAuditAction = "order.cancelled"
	AuditPaymentIntent       OrderAuditAction = "payment.intent_created"
	AuditPaymentSucceeded    OrderAuditAction = "payment.succeeded"
	AuditPaymentFailed       OrderAuditAction = "payment.failed"
	AuditDocumentsUploaded   OrderAuditAction = "documents.uploaded"
	AuditDocumentDeleted     OrderAuditAction = "documents.deleted"
	AuditAnalysisRequested   OrderAuditAction = "analysis.requested"
	AuditAnalysisCompleted   OrderAuditAction = "analysis.completed"
	AuditAnalysisFailed      OrderAuditAction = "analysis.failed"
	AuditAnalysisRetry       OrderAuditAction = "analysis.retry"
	AuditAnalysisRateLimited OrderAuditAction = "analysis.rate_limited"
)
