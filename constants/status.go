package constants

// JobStatus is the canonical status for a contract processing job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"    // waiting for a worker
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusExtracted JobStatus = "EXTRACTED" // pages extracted and merged
	JobStatusComplete  JobStatus = "COMPLETE"  // net sheet computed
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
