package inventory

import (
	"fmt"
	"iter"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

// Options tune what an Aggregator does besides counting.
type Options struct {
	// SizeBreachBytes flags the result when the total size reaches it. Zero disables the check.
	SizeBreachBytes int64
	// KeepFiles retains every valid descriptor in the result.
	KeepFiles bool
	// OnDiagnostic receives stale-file, malformed-descriptor and size events.
	OnDiagnostic func(entity.Diagnostic)
}

// Aggregator is an immutable-by-convention fold over the descriptors of one instance.
type Aggregator struct {
	instanceID string
	cutoffs    Cutoffs
	opts       Options

	totalSize int64
	fileCount int
	skipped   int
	over      map[entity.Category]int
	files     []entity.LogFileDescriptor
}

// NewAggregator starts an empty fold for instanceID.
func NewAggregator(instanceID string, cutoffs Cutoffs, opts Options) Aggregator {
	return Aggregator{
		instanceID: instanceID,
		cutoffs:    cutoffs,
		opts:       opts,
		over:       map[entity.Category]int{},
	}
}

// Fold returns the aggregator with d accounted for.
func (a Aggregator) Fold(d entity.LogFileDescriptor) Aggregator {
	if err := d.Validate(); err != nil {
		a.skipped++
		a.emit(entity.DiagnosticMalformedDescriptor, d.Name, "", err.Error())
		return a
	}

	a.totalSize += d.SizeBytes
	a.fileCount++
	if a.opts.KeepFiles {
		a.files = append(a.files, d)
	}

	if category, stale := a.cutoffs.IsStale(d); stale {
		over := make(map[entity.Category]int, len(a.over)+1)
		for k, v := range a.over {
			over[k] = v
		}
		over[category]++
		a.over = over
		a.emit(entity.DiagnosticStaleLogFile, d.Name, category.String(),
			fmt.Sprintf("There are log files that have exceeded the rotation period !! - %s", d.Name))
	}
	return a
}

// Result snapshots the fold.
func (a Aggregator) Result() entity.AggregateResult {
	result := entity.AggregateResult{
		InstanceID:              a.instanceID,
		TotalSizeBytes:          a.totalSize,
		TotalFileCount:          a.fileCount,
		OverThresholdByCategory: make(map[entity.Category]int, len(entity.Categories)),
		SkippedCount:            a.skipped,
	}
	for _, category := range entity.Categories {
		n := a.over[category]
		result.OverThresholdByCategory[category] = n
		result.TotalOverThresholdCount += n
	}
	if a.opts.SizeBreachBytes > 0 && a.totalSize >= a.opts.SizeBreachBytes {
		result.SizeThresholdExceeded = true
	}
	if a.opts.KeepFiles {
		result.Files = append([]entity.LogFileDescriptor(nil), a.files...)
	}
	return result
}

func (a Aggregator) emit(kind entity.DiagnosticKind, fileName, category, message string) {
	if a.opts.OnDiagnostic == nil {
		return
	}
	a.opts.OnDiagnostic(entity.Diagnostic{
		Kind:       kind,
		InstanceID: a.instanceID,
		FileName:   fileName,
		Category:   category,
		Message:    message,
		Time:       a.cutoffs.Now(),
	})
}

// Aggregate folds a descriptor sequence. The first sequence error aborts the
// fold and no partial result is returned.
func Aggregate(seq iter.Seq2[entity.LogFileDescriptor, error], agg Aggregator) (entity.AggregateResult, error) {
	for d, err := range seq {
		if err != nil {
			return entity.AggregateResult{}, err
		}
		agg = agg.Fold(d)
	}

	result := agg.Result()
	if result.SizeThresholdExceeded {
		agg.emit(entity.DiagnosticSizeThresholdExceeded, "", "",
			fmt.Sprintf("Disk space threshold you specified has been exceeded!! (%d bytes, threshold %d bytes)",
				result.TotalSizeBytes, agg.opts.SizeBreachBytes-1))
	}
	return result, nil
}
