package constants

// RecordStatus is the canonical status for rows in extraction_records.
type RecordStatus string

// Stable values (store these exact strings in DB).
const (
	RecordStatusExtracted   RecordStatus = "EXTRACTED"    // pipeline succeeded, no blocking findings
	RecordStatusNeedsReview RecordStatus = "NEEDS_REVIEW" // pipeline succeeded with validation errors
	RecordStatusFailed      RecordStatus = "FAILED"       // terminal pipeline failure
)
