package model

type TransferKind string

const (
	TransferQuestionImport TransferKind = "question_import"
	TransferQuestionExport TransferKind = "question_export"
	TransferTestExport     TransferKind = "test_export"
	TransferTestPDF        TransferKind = "test_pdf"
)

type TransferStatus string

const (
	TransferAccepted TransferStatus = "accepted"
	TransferFailed   TransferStatus = "failed"
)

// TransferJob records one import/export request forwarded to the exam API.
// The API processes them asynchronously; this is the local audit trail.
// swagger:model TransferJob
type TransferJob struct {
	BaseModel
	Kind               TransferKind   `gorm:"type:varchar(32);index;not null" json:"kind"`
	QuestionCategoryID *uint          `gorm:"index" json:"questionCategoryId,omitempty"`
	TestID             *uint          `gorm:"index" json:"testId,omitempty"`
	FileName           string         `gorm:"size:255" json:"fileName,omitempty"`
	Status             TransferStatus `gorm:"type:varchar(16);not null" json:"status"`
	Message            string         `gorm:"size:1024" json:"message"`
	FileURL            string         `gorm:"size:1024" json:"fileUrl,omitempty"`
	RequestedBy        uint           `gorm:"index" json:"requestedBy"`
}

func (TransferJob) TableName() string {
	return "transfer_jobs"
}

// TransferJobFilter narrows the audit log listing.
type TransferJobFilter struct {
	Kind        TransferKind
	RequestedBy uint
	Page        int
	Limit       int
}
