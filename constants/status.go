package constants

// JobStatus is the canonical status for rows in extraction_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"    // accepted, processing started
	JobStatusSucceeded JobStatus = "SUCCEEDED" // response produced
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
