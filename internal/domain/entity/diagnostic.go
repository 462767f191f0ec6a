package entity

import "time"

// DiagnosticKind identifies an operator-facing event raised during a scan.
type DiagnosticKind string

const (
	DiagnosticStaleLogFile          DiagnosticKind = "stale_log_file"
	DiagnosticMalformedDescriptor   DiagnosticKind = "malformed_descriptor"
	DiagnosticSizeThresholdExceeded DiagnosticKind = "size_threshold_exceeded"
	DiagnosticTruncated             DiagnosticKind = "diagnostics_truncated"
)

// Diagnostic is informational only; it never changes an aggregate.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	InstanceID string         `json:"instance_id"`
	FileName   string         `json:"file_name,omitempty"`
	Category   string         `json:"category,omitempty"`
	Message    string         `json:"message"`
	Time       time.Time      `json:"time"`
}
