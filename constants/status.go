package constants

// RequestStatus is the canonical status for a purchase request.
type RequestStatus string

// Stable values (store these exact strings).
const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// JobStatus is the canonical status for rows in extract_job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"     // queued for processing
	JobStatusRunning   JobStatus = "RUNNING"    // in progress
	JobStatusExtractOK JobStatus = "EXTRACT_OK" // text + fields extracted
	JobStatusFailed    JobStatus = "FAILED"     // terminal failure
)

// JobStatuses holds the allowed values for the extract_job status column.
var JobStatuses = []string{
	string(JobStatusQueued),
	string(JobStatusRunning),
	string(JobStatusExtractOK),
	string(JobStatusFailed),
}
