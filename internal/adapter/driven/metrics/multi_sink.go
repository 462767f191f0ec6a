package metrics

import (
	"context"
	"errors"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
)

// MultiSink fans every data point out to all of its sinks.
type MultiSink []repository.MetricsSink

// PublishMetric tries every sink and joins their errors.
func (m MultiSink) PublishMetric(ctx context.Context, namespace string, datum entity.MetricDatum) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PublishMetric(ctx, namespace, datum); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ConsoleSink prints data points instead of publishing them. Used for dry runs
// and for the "none" backend.
type ConsoleSink struct {
	console types.ConsoleInterface
}

func NewConsoleSink(console types.ConsoleInterface) *ConsoleSink {
	return &ConsoleSink{console: console}
}

func (s *ConsoleSink) PublishMetric(_ context.Context, namespace string, datum entity.MetricDatum) error {
	dims := ""
	for i, d := range datum.Dimensions {
		if i > 0 {
			dims += ","
		}
		dims += d.Name + "=" + d.Value
	}
	s.console.LogInfo("metric %s/%s{%s} = %g %s", namespace, datum.Name, dims, datum.Value, datum.Unit)
	return nil
}
