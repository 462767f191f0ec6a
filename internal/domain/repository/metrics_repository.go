package repository

import (
	"context"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

// MetricsSink accepts data points for a namespace.
type MetricsSink interface {
	PublishMetric(ctx context.Context, namespace string, datum entity.MetricDatum) error
}

// DiagnosticsSink receives operator-facing diagnostics in addition to the console.
type DiagnosticsSink interface {
	Ship(ctx context.Context, diagnostics []entity.Diagnostic) error
}

// IdentityRepository resolves the account the credentials belong to.
type IdentityRepository interface {
	GetAccountID(ctx context.Context) (string, error)
}
