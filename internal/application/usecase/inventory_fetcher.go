package usecase

import (
	"context"
	"fmt"
	"iter"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
	"github.com/diillson/aurora-logmon/pkg/telemetry"
)

// DefaultPageSize is the largest page DescribeDBLogFiles returns.
const DefaultPageSize = 1000

// InventoryFetcher walks the paginated log file listing of an instance.
type InventoryFetcher struct {
	lister   repository.LogFileLister
	PageSize int
}

// NewInventoryFetcher creates a fetcher with the default page size.
func NewInventoryFetcher(lister repository.LogFileLister) *InventoryFetcher {
	return &InventoryFetcher{lister: lister, PageSize: DefaultPageSize}
}

// Descriptors lazily yields every descriptor of instanceID in API order.
// A failed page request yields one error wrapped as ErrUpstreamUnavailable
// and ends the sequence.
func (f *InventoryFetcher) Descriptors(ctx context.Context, instanceID string) iter.Seq2[entity.LogFileDescriptor, error] {
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return func(yield func(entity.LogFileDescriptor, error) bool) {
		marker := ""
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(entity.LogFileDescriptor{}, fmt.Errorf("%w: listing log files of %s: %w",
					types.ErrUpstreamUnavailable, instanceID, err))
				return
			}

			result, err := f.fetchPage(ctx, instanceID, marker, page)
			if err != nil {
				yield(entity.LogFileDescriptor{}, fmt.Errorf("%w: listing log files of %s (page %d): %w",
					types.ErrUpstreamUnavailable, instanceID, page, err))
				return
			}

			for _, d := range result.Files {
				if !yield(d, nil) {
					return
				}
			}

			// A short page is the last one. A full page without a marker
			// also ends the listing so a misbehaving API cannot loop us.
			if len(result.Files) < pageSize || result.NextMarker == "" {
				return
			}
			marker = result.NextMarker
		}
	}
}

func (f *InventoryFetcher) fetchPage(ctx context.Context, instanceID, marker string, page int) (entity.LogFilePage, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ListLogFiles", trace.WithAttributes(
		attribute.String("db.instance", instanceID),
		attribute.Int("page", page),
	))
	result, err := f.lister.ListLogFiles(ctx, instanceID, marker)
	span.SetAttributes(attribute.Int("files", len(result.Files)))
	telemetry.End(span, err)
	return result, err
}
