package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/inventory"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
	"github.com/diillson/aurora-logmon/pkg/telemetry"
)

// MonitorDeps wires the ports a monitoring run talks to.
// Identity, Diagnostics, Export and Artifacts are optional.
type MonitorDeps struct {
	Instances   repository.InstanceLister
	LogFiles    repository.LogFileLister
	Metrics     repository.MetricsSink
	Identity    repository.IdentityRepository
	Diagnostics repository.DiagnosticsSink
	Export      repository.ExportRepository
	Artifacts   repository.ArtifactStore
	Console     types.ConsoleInterface
}

// MonitorUseCase runs one monitoring pass over a cluster.
type MonitorUseCase struct {
	deps     MonitorDeps
	policy   inventory.StalenessPolicy
	pageSize int
	now      func() time.Time
	runID    func() string
}

// NewMonitorUseCase creates a new monitor use case with the fixed rotation policy.
func NewMonitorUseCase(deps MonitorDeps) *MonitorUseCase {
	return &MonitorUseCase{
		deps:     deps,
		policy:   inventory.DefaultPolicy(),
		pageSize: DefaultPageSize,
		now:      time.Now,
		runID:    func() string { return uuid.NewString() },
	}
}

// ResolveConfig merges defaults, the config file, the environment and the
// CLI overrides, in that order of precedence. repo may be nil.
func ResolveConfig(repo repository.ConfigRepository, args *types.CLIArgs) (*types.RunConfig, error) {
	cfg := types.DefaultRunConfig()

	if repo != nil {
		if args != nil && args.ConfigFile != "" {
			fromFile, err := repo.LoadConfigFile(args.ConfigFile)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", types.ErrConfiguration, err)
			}
			cfg.Overlay(fromFile)
		}

		fromEnv, err := repo.LoadEnv()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrConfiguration, err)
		}
		cfg.Overlay(fromEnv)
	}

	if args != nil {
		cfg.Overlay(&args.Overrides)
	}
	return cfg, nil
}

// Run executes one monitoring pass. It never panics on upstream failures:
// every problem ends up in the returned report.
func (uc *MonitorUseCase) Run(ctx context.Context, cfg *types.RunConfig) *entity.RunReport {
	startedAt := uc.now()
	report := &entity.RunReport{
		RunID:     uc.runID(),
		StartedAt: startedAt,
	}
	if cfg != nil {
		report.ClusterID = cfg.ClusterIdentifier
	}
	defer func() {
		report.FinishedAt = uc.now()
		report.Finalize()
	}()

	if cfg == nil {
		report.Err = fmt.Errorf("%w: no configuration", types.ErrConfiguration)
		return report
	}
	if err := cfg.Validate(); err != nil {
		report.Err = err
		uc.deps.Console.LogError("%s", err)
		return report
	}
	uc.logConfig(cfg)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	ctx, span := telemetry.Tracer().Start(ctx, "MonitorRun", trace.WithAttributes(
		attribute.String("run.id", report.RunID),
		attribute.String("db.cluster", cfg.ClusterIdentifier),
	))
	defer func() { telemetry.End(span, report.Combined()) }()

	if uc.deps.Identity != nil {
		accountID, err := uc.deps.Identity.GetAccountID(ctx)
		if err != nil {
			uc.deps.Console.LogWarning("Could not resolve the AWS account id: %s", err)
		} else {
			report.AccountID = accountID
		}
	}

	// One snapshot of now per run; every instance is judged against it.
	cutoffs := uc.policy.Cutoffs(startedAt)

	walker := NewClusterWalker(uc.deps.Instances, cfg.Concurrency)
	status := uc.deps.Console.Status(fmt.Sprintf("Listing instances of cluster %s...", cfg.ClusterIdentifier))
	instances, err := walker.Instances(ctx, cfg.ClusterIdentifier)
	status.Stop()
	if err != nil {
		report.Err = err
		uc.deps.Console.LogError("%s", err)
		return report
	}
	if len(instances) == 0 {
		uc.deps.Console.LogWarning("Cluster %s has no instances", cfg.ClusterIdentifier)
	}

	progress := uc.deps.Console.ProgressWithTotal(len(instances))
	report.Outcomes = walker.Each(ctx, instances, func(ctx context.Context, instance entity.DBInstance) entity.InstanceOutcome {
		defer progress.Increment()
		return uc.processInstance(ctx, cfg, cutoffs, instance)
	})
	progress.Stop()

	uc.renderSummary(report)
	if cfg.ListFiles {
		uc.renderFiles(report)
	}

	uc.exportReport(ctx, cfg, report)

	if report.Succeeded() {
		uc.deps.Console.LogSuccess("Run %s finished: %s", report.RunID, report.Summary())
	} else {
		uc.deps.Console.LogError("Run %s finished: %s", report.RunID, report.Summary())
	}
	return report
}

func (uc *MonitorUseCase) processInstance(
	ctx context.Context,
	cfg *types.RunConfig,
	cutoffs inventory.Cutoffs,
	instance entity.DBInstance,
) entity.InstanceOutcome {
	outcome := entity.InstanceOutcome{Instance: instance}

	ctx, span := telemetry.Tracer().Start(ctx, "ProcessInstance", trace.WithAttributes(
		attribute.String("db.instance", instance.Identifier),
	))
	defer func() { telemetry.End(span, outcome.Err) }()

	fetcher := NewInventoryFetcher(uc.deps.LogFiles)
	fetcher.PageSize = uc.pageSize
	diags := newInstanceDiagnostics(uc.deps.Console, uc.deps.Diagnostics != nil)
	agg := inventory.NewAggregator(instance.Identifier, cutoffs, inventory.Options{
		SizeBreachBytes: cfg.SizeBreachBytes(),
		KeepFiles:       cfg.ListFiles,
		OnDiagnostic:    diags.add,
	})

	result, err := inventory.Aggregate(fetcher.Descriptors(ctx, instance.Identifier), agg)
	if err != nil {
		// The aggregate is discarded, and so are the diagnostics it raised.
		outcome.Err = &types.InstanceError{InstanceID: instance.Identifier, Stage: types.StageListLogFiles, Err: err}
		uc.deps.Console.LogError("%s", outcome.Err)
		return outcome
	}
	outcome.Result = &result
	uc.logAggregate(result)
	uc.shipDiagnostics(ctx, instance.Identifier, diags.drain(uc.now()))

	publisher := NewMetricPublisher(uc.deps.Metrics)
	if err := publisher.Publish(ctx, cfg, cfg.ClusterIdentifier, result); err != nil {
		outcome.Err = &types.InstanceError{InstanceID: instance.Identifier, Stage: types.StagePublish, Err: err}
		uc.deps.Console.LogError("%s", outcome.Err)
		return outcome
	}
	outcome.Published = true
	return outcome
}

func (uc *MonitorUseCase) logConfig(cfg *types.RunConfig) {
	uc.deps.Console.LogInfo("AURORA_CLUSTER: %s", cfg.ClusterIdentifier)
	uc.deps.Console.LogInfo("THRESHOLD_TOTAL_LOG_FILE_SIZE(GB): %g", cfg.SizeThresholdGB)
	uc.deps.Console.LogInfo("METRICS_NAMESPACE: %s", cfg.MetricsNamespace)
	uc.deps.Console.LogInfo("TOTAL_LOG_FILE_SIZE_METRICS_NAME: %s", cfg.SizeMetricName)
	uc.deps.Console.LogInfo("OVER_THRESHOLD_COUNT_METRICS_NAME: %s", cfg.OverThresholdMetricName)
	if cfg.DryRun {
		uc.deps.Console.LogWarning("Dry run: metrics are printed instead of published")
	}
}

func (uc *MonitorUseCase) logAggregate(r entity.AggregateResult) {
	c := uc.deps.Console
	c.LogInfo("[%s] over 30day error log count: %d", r.InstanceID, r.OverThresholdByCategory[entity.CategoryError])
	c.LogInfo("[%s] over 1day general log count: %d", r.InstanceID, r.OverThresholdByCategory[entity.CategoryGeneral])
	c.LogInfo("[%s] over 1day audit log count: %d", r.InstanceID, r.OverThresholdByCategory[entity.CategoryAudit])
	c.LogInfo("[%s] over 1day slowquery log count: %d", r.InstanceID, r.OverThresholdByCategory[entity.CategorySlowQuery])
	c.LogInfo("[%s] total count: %d", r.InstanceID, r.TotalFileCount)
	c.LogInfo("[%s] total size (GB): %.4f", r.InstanceID, r.TotalSizeGB())
	if r.SkippedCount > 0 {
		c.LogWarning("[%s] %d malformed log file descriptors skipped", r.InstanceID, r.SkippedCount)
	}
}

func (uc *MonitorUseCase) renderSummary(report *entity.RunReport) {
	if len(report.Outcomes) == 0 {
		return
	}

	table := uc.deps.Console.CreateTable()
	table.AddColumn("Instance")
	table.AddColumn("Files")
	table.AddColumn("Total Size")
	table.AddColumn("Error")
	table.AddColumn("General")
	table.AddColumn("Audit")
	table.AddColumn("Slow Query")
	table.AddColumn("Stale Total")
	table.AddColumn("Status")

	for _, o := range report.Outcomes {
		if o.Result == nil {
			table.AddRow(o.Instance.Identifier, "-", "-", "-", "-", "-", "-", "-", "failed")
			continue
		}
		r := o.Result
		status := "published"
		if o.Failed() {
			status = "publish failed"
		}
		table.AddRow(
			o.Instance.Identifier,
			humanize.Comma(int64(r.TotalFileCount)),
			humanize.IBytes(uint64(r.TotalSizeBytes)),
			r.OverThresholdByCategory[entity.CategoryError],
			r.OverThresholdByCategory[entity.CategoryGeneral],
			r.OverThresholdByCategory[entity.CategoryAudit],
			r.OverThresholdByCategory[entity.CategorySlowQuery],
			r.TotalOverThresholdCount,
			status,
		)
	}

	uc.deps.Console.Println(table.Render())
}

func (uc *MonitorUseCase) renderFiles(report *entity.RunReport) {
	for _, o := range report.Outcomes {
		if o.Result == nil || len(o.Result.Files) == 0 {
			continue
		}

		table := uc.deps.Console.CreateTable()
		table.AddColumn("Log File")
		table.AddColumn("Category")
		table.AddColumn("Size")
		table.AddColumn("Last Written")
		for _, f := range o.Result.Files {
			table.AddRow(
				f.Name,
				inventory.Classify(f.Name),
				humanize.IBytes(uint64(f.SizeBytes)),
				humanize.RelTime(f.LastWrittenTime(), report.StartedAt, "ago", "from now"),
			)
		}

		uc.deps.Console.LogInfo("Log files of %s", o.Instance.Identifier)
		uc.deps.Console.Println(table.Render())
	}
}

func (uc *MonitorUseCase) shipDiagnostics(ctx context.Context, instanceID string, diagnostics []entity.Diagnostic) {
	if uc.deps.Diagnostics == nil || len(diagnostics) == 0 {
		return
	}
	if err := uc.deps.Diagnostics.Ship(ctx, diagnostics); err != nil {
		uc.deps.Console.LogWarning("[%s] Failed to ship %d diagnostics: %s", instanceID, len(diagnostics), err)
	}
}

// exportReport escreve o relatório nos formatos pedidos e, se houver bucket, envia ao S3.
func (uc *MonitorUseCase) exportReport(ctx context.Context, cfg *types.RunConfig, report *entity.RunReport) {
	if cfg.ReportName == "" || uc.deps.Export == nil {
		return
	}

	report.FinishedAt = uc.now()
	report.Finalize()

	var paths []string
	for _, reportType := range cfg.ReportType {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.deps.Export.ExportReportToCSV(*report, cfg.ReportName, cfg.ReportDir)
		case "json":
			path, err = uc.deps.Export.ExportReportToJSON(*report, cfg.ReportName, cfg.ReportDir)
		case "pdf":
			path, err = uc.deps.Export.ExportReportToPDF(*report, cfg.ReportName, cfg.ReportDir)
		default:
			continue
		}
		if err != nil {
			uc.deps.Console.LogError("Failed to export report to %s: %s", reportType, err)
			continue
		}
		uc.deps.Console.LogSuccess("Successfully exported report to %s: %s", reportType, path)
		paths = append(paths, path)
	}

	if cfg.ReportBucket == "" || uc.deps.Artifacts == nil || len(paths) == 0 {
		return
	}
	uploaded, err := uc.deps.Artifacts.Upload(ctx, cfg.ReportBucket, paths)
	if err != nil {
		uc.deps.Console.LogError("Failed to upload reports to %s: %s", cfg.ReportBucket, err)
		return
	}
	for _, u := range uploaded {
		uc.deps.Console.LogSuccess("Uploaded %s", u)
	}
}

// DiagnosticsPerInstance caps how many diagnostics one instance keeps for
// shipping. It matches one PutLogEvents batch.
const DiagnosticsPerInstance = 1000

// instanceDiagnostics logs every diagnostic of one instance. When retain is
// set it also buffers up to DiagnosticsPerInstance of them and counts the rest.
// It is owned by a single worker.
type instanceDiagnostics struct {
	console types.ConsoleInterface
	retain  bool
	kept    []entity.Diagnostic
	dropped int
	last    entity.Diagnostic
}

func newInstanceDiagnostics(console types.ConsoleInterface, retain bool) *instanceDiagnostics {
	return &instanceDiagnostics{console: console, retain: retain}
}

func (d *instanceDiagnostics) add(diag entity.Diagnostic) {
	d.console.LogWarning("[%s] %s", diag.InstanceID, diag.Message)
	if !d.retain {
		return
	}
	if len(d.kept) >= DiagnosticsPerInstance {
		d.dropped++
		d.last = diag
		return
	}
	d.kept = append(d.kept, diag)
}

// drain hands over the buffer, closing it with a truncation record when
// diagnostics were dropped, and resets it.
func (d *instanceDiagnostics) drain(now time.Time) []entity.Diagnostic {
	out := d.kept
	if d.dropped > 0 {
		out = append(out, entity.Diagnostic{
			Kind:       entity.DiagnosticTruncated,
			InstanceID: d.last.InstanceID,
			Message:    fmt.Sprintf("%d further diagnostics were not shipped", d.dropped),
			Time:       now,
		})
	}
	d.kept, d.dropped = nil, 0
	return out
}

// IsConfigurationError reports whether err is a configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, types.ErrConfiguration)
}
