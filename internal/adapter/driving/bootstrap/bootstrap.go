// Package bootstrap assembles the monitor from a resolved configuration. It is
// shared by the CLI and the Lambda entrypoint.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diillson/aurora-logmon/internal/adapter/driven/aws"
	"github.com/diillson/aurora-logmon/internal/adapter/driven/export"
	"github.com/diillson/aurora-logmon/internal/adapter/driven/metrics"
	"github.com/diillson/aurora-logmon/internal/application/usecase"
	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
	"github.com/diillson/aurora-logmon/pkg/telemetry"
	"github.com/diillson/aurora-logmon/pkg/version"
)

// Clients are the AWS API clients the monitor needs.
type Clients struct {
	RDS        aws.RDSAPI
	CloudWatch aws.CloudWatchAPI
	Logs       aws.CloudWatchLogsAPI
	S3         aws.S3API
	STS        aws.STSAPI
}

// LoadClients builds every client from one shared AWS config.
func LoadClients(ctx context.Context, cfg *types.RunConfig) (Clients, error) {
	sess := aws.NewSession(aws.SessionOptions{
		Profile:     cfg.Profile,
		Region:      cfg.Region,
		MaxAttempts: cfg.MaxAttempts,
		MaxBackoff:  cfg.MaxBackoff(),
		AppID:       version.AppID(),
	})

	var (
		c   Clients
		err error
	)
	if c.RDS, err = sess.RDS(ctx); err != nil {
		return Clients{}, err
	}
	if c.CloudWatch, err = sess.CloudWatch(ctx); err != nil {
		return Clients{}, err
	}
	if c.Logs, err = sess.CloudWatchLogs(ctx); err != nil {
		return Clients{}, err
	}
	if c.S3, err = sess.S3(ctx); err != nil {
		return Clients{}, err
	}
	if c.STS, err = sess.STS(ctx); err != nil {
		return Clients{}, err
	}
	return c, nil
}

// Run executes one monitoring pass against AWS for a validated cfg. Spans are
// flushed before it returns.
func Run(ctx context.Context, cfg *types.RunConfig, con types.ConsoleInterface) (*entity.RunReport, error) {
	shutdown, err := InitTelemetry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = shutdown(context.Background()) }()

	clients, err := LoadClients(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return usecase.NewMonitorUseCase(Deps(cfg, clients, con)).Run(ctx, cfg), nil
}

// Deps wires the use case ports for cfg on top of clients.
func Deps(cfg *types.RunConfig, clients Clients, console types.ConsoleInterface) usecase.MonitorDeps {
	rdsRepo := aws.NewRDSRepository(clients.RDS)

	deps := usecase.MonitorDeps{
		Instances: rdsRepo,
		LogFiles:  rdsRepo,
		Metrics:   MetricsSink(cfg, clients.CloudWatch, console),
		Identity:  aws.NewIdentityRepository(clients.STS),
		Export:    export.NewExportRepository(),
		Console:   console,
	}
	if cfg.DiagnosticsLogGroup != "" {
		deps.Diagnostics = aws.NewDiagnosticsLogSink(clients.Logs, cfg.DiagnosticsLogGroup, StreamName(cfg.ClusterIdentifier, time.Now()))
	}
	if cfg.ReportBucket != "" {
		deps.Artifacts = aws.NewS3ArtifactStore(clients.S3)
	}
	return deps
}

// MetricsSink picks the sink for the configured backend. Dry runs always print.
func MetricsSink(cfg *types.RunConfig, cw aws.CloudWatchAPI, console types.ConsoleInterface) repository.MetricsSink {
	if cfg.DryRun {
		return metrics.NewConsoleSink(console)
	}

	var sinks metrics.MultiSink
	if cfg.UsesCloudWatch() {
		sinks = append(sinks, aws.NewCloudWatchSink(cw))
	}
	if cfg.UsesPrometheus() {
		sinks = append(sinks, metrics.NewTextfileSink(cfg.PrometheusTextfile))
	}

	switch len(sinks) {
	case 0:
		return metrics.NewConsoleSink(console)
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}

// StreamName is the diagnostics log stream of one run.
func StreamName(clusterID string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s", clusterID, now.UTC().Format("2006/01/02/150405"), uuid.NewString()[:8])
}

// InitTelemetry enables tracing when requested and returns its shutdown.
func InitTelemetry(ctx context.Context, cfg *types.RunConfig) (func(context.Context) error, error) {
	if !cfg.Trace && cfg.TraceEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	return telemetry.Init(ctx, telemetry.Options{
		ServiceVersion: version.Version,
		Endpoint:       cfg.TraceEndpoint,
		Stdout:         cfg.Trace,
	})
}
