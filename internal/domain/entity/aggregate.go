package entity

// AggregateResult resume o inventário de logs de uma instância.
type AggregateResult struct {
	InstanceID              string              `json:"instance_id"`
	TotalSizeBytes          int64               `json:"total_size_bytes"`
	TotalFileCount          int                 `json:"total_file_count"`
	OverThresholdByCategory map[Category]int    `json:"over_threshold_by_category"`
	TotalOverThresholdCount int                 `json:"total_over_threshold_count"`
	SkippedCount            int                 `json:"skipped_count"`
	SizeThresholdExceeded   bool                `json:"size_threshold_exceeded"`
	Files                   []LogFileDescriptor `json:"files,omitempty"`
}

// TotalSizeGB returns the total size in GiB, the unit used by the size threshold.
func (r AggregateResult) TotalSizeGB() float64 {
	return float64(r.TotalSizeBytes) / (1024.0 * 1024.0 * 1024.0)
}
