package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
	"github.com/diillson/aurora-logmon/pkg/telemetry"
)

// Dimension names attached to every data point.
const (
	DimensionCluster  = "DBClusterIdentifier"
	DimensionInstance = "DBInstanceIdentifier"
)

// MetricPublisher turns an aggregate into data points for a metrics sink.
type MetricPublisher struct {
	sink repository.MetricsSink
	now  func() time.Time
}

// NewMetricPublisher creates a publisher writing to sink.
func NewMetricPublisher(sink repository.MetricsSink) *MetricPublisher {
	return &MetricPublisher{sink: sink, now: time.Now}
}

// Datums builds the two data points of an instance: total size and stale count.
func (p *MetricPublisher) Datums(cfg *types.RunConfig, clusterID string, result entity.AggregateResult) []entity.MetricDatum {
	dims := []entity.Dimension{
		{Name: DimensionCluster, Value: clusterID},
		{Name: DimensionInstance, Value: result.InstanceID},
	}
	ts := p.now()

	return []entity.MetricDatum{
		{
			Name:       cfg.SizeMetricName,
			Value:      float64(result.TotalSizeBytes),
			Unit:       entity.UnitBytes,
			Dimensions: dims,
			Timestamp:  ts,
		},
		{
			Name:       cfg.OverThresholdMetricName,
			Value:      float64(result.TotalOverThresholdCount),
			Unit:       entity.UnitCount,
			Dimensions: append([]entity.Dimension(nil), dims...),
			Timestamp:  ts,
		},
	}
}

// Publish submits both data points. The second is attempted even when the
// first fails; failures come back joined and wrapped as ErrPublishFailure.
func (p *MetricPublisher) Publish(ctx context.Context, cfg *types.RunConfig, clusterID string, result entity.AggregateResult) (err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "PublishMetrics", trace.WithAttributes(
		attribute.String("db.instance", result.InstanceID),
		attribute.String("metrics.namespace", cfg.MetricsNamespace),
	))
	defer func() { telemetry.End(span, err) }()

	var errs []error
	for _, datum := range p.Datums(cfg, clusterID, result) {
		if perr := p.sink.PublishMetric(ctx, cfg.MetricsNamespace, datum); perr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", datum.Name, perr))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", types.ErrPublishFailure, errors.Join(errs...))
	}
	return nil
}
