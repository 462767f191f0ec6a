package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
	"github.com/diillson/aurora-logmon/pkg/telemetry"
)

// DefaultConcurrency bounds how many instances are processed at once.
const DefaultConcurrency = 4

// InstanceProcessor handles one instance and reports how it went.
type InstanceProcessor func(ctx context.Context, instance entity.DBInstance) entity.InstanceOutcome

// ClusterWalker fans a per-instance pipeline out over the members of a cluster.
type ClusterWalker struct {
	lister      repository.InstanceLister
	Concurrency int
}

// NewClusterWalker creates a walker with the given worker limit.
func NewClusterWalker(lister repository.InstanceLister, concurrency int) *ClusterWalker {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &ClusterWalker{lister: lister, Concurrency: concurrency}
}

// Instances lists the members of clusterID.
func (w *ClusterWalker) Instances(ctx context.Context, clusterID string) ([]entity.DBInstance, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ListInstances", trace.WithAttributes(
		attribute.String("db.cluster", clusterID),
	))
	instances, err := w.lister.ListInstances(ctx, clusterID)
	if err != nil {
		err = fmt.Errorf("%w: listing instances of cluster %s: %w", types.ErrUpstreamUnavailable, clusterID, err)
	}
	telemetry.End(span, err)
	return instances, err
}

// Walk lists the instances of clusterID and runs process for each one.
// Outcomes keep the listing order. A failing instance never stops its siblings.
func (w *ClusterWalker) Walk(ctx context.Context, clusterID string, process InstanceProcessor) ([]entity.InstanceOutcome, error) {
	instances, err := w.Instances(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	return w.Each(ctx, instances, process), nil
}

// Each runs process over instances on the bounded pool.
func (w *ClusterWalker) Each(ctx context.Context, instances []entity.DBInstance, process InstanceProcessor) []entity.InstanceOutcome {
	outcomes := make([]entity.InstanceOutcome, len(instances))

	limit := w.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}

	// Workers never return an error so one instance cannot cancel the group.
	var g errgroup.Group
	g.SetLimit(limit)
	for i, instance := range instances {
		g.Go(func() error {
			outcomes[i] = process(ctx, instance)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
