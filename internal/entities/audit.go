package entities

import "time"

// AuditRecord captures a single policy decision for audit logging.
type AuditRecord struct {
	Timestamp     time.Time
	RequestID     string
	Subject       *Subject
	Resource      *Resource
	Action        *Action
	Decision      *Decision
	LatencyMillis float64
	Cached        bool
	SourceService string
}
