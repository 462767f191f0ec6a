package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/shared/types"
)

type monitorFixture struct {
	instances   *fakeInstances
	logFiles    *fakeLogFiles
	sink        *fakeSink
	diagnostics *fakeDiagnostics
	console     *quietConsole
	uc          *MonitorUseCase
}

func newMonitorFixture(ids ...string) *monitorFixture {
	f := &monitorFixture{
		instances:   &fakeInstances{},
		logFiles:    newFakeLogFiles(),
		sink:        &fakeSink{},
		diagnostics: &fakeDiagnostics{},
		console:     &quietConsole{},
	}
	for _, id := range ids {
		f.instances.instances = append(f.instances.instances, entity.DBInstance{Identifier: id})
	}
	f.uc = NewMonitorUseCase(MonitorDeps{
		Instances:   f.instances,
		LogFiles:    f.logFiles,
		Metrics:     f.sink,
		Identity:    fakeIdentity{accountID: "123456789012"},
		Diagnostics: f.diagnostics,
		Console:     f.console,
	})
	f.uc.now = func() time.Time { return fixedNow }
	f.uc.runID = func() string { return "run-1" }
	return f
}

func metricValue(t *testing.T, datums []entity.MetricDatum, name string) float64 {
	t.Helper()
	for _, d := range datums {
		if d.Name == name {
			return d.Value
		}
	}
	t.Fatalf("metric %s not published", name)
	return 0
}

func TestRunScenarioSingleInstance(t *testing.T) {
	f := newMonitorFixture("db-1")
	f.logFiles.withFiles("db-1", 1000, []entity.LogFileDescriptor{
		{Name: "error/mysql-error.log.1", SizeBytes: 500, LastWritten: fixedNow.Add(-31 * 24 * time.Hour).UnixMilli()},
		{Name: "general/mysql-general.log.1", SizeBytes: 100, LastWritten: fixedNow.Add(-26 * time.Hour).UnixMilli()},
	})

	report := f.uc.Run(context.Background(), validConfig())

	require.True(t, report.Succeeded(), report.Summary())
	assert.Equal(t, http.StatusOK, report.StatusCode())
	assert.Equal(t, "Success", report.Summary())
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "123456789012", report.AccountID)

	points := f.sink.forInstance("db-1")
	require.Len(t, points, 2)
	assert.Equal(t, 600.0, metricValue(t, points, "TotalLogFileSize"))
	assert.Equal(t, 2.0, metricValue(t, points, "OverThresholdLogFileCount"))

	require.Len(t, report.Outcomes, 1)
	result := report.Outcomes[0].Result
	require.NotNil(t, result)
	assert.Equal(t, 1, result.OverThresholdByCategory[entity.CategoryError])
	assert.Equal(t, 1, result.OverThresholdByCategory[entity.CategoryGeneral])

	assert.Len(t, f.diagnostics.shipped, 2)
	assert.True(t, f.console.contains("over 30day error log count: 1"))
	assert.True(t, f.console.contains("There are log files that have exceeded the rotation period !! - error/mysql-error.log.1"))
}

func TestRunIsolatesListingFailure(t *testing.T) {
	f := newMonitorFixture("db-1", "db-2")
	f.logFiles.withFiles("db-1", 1000, descriptors(3, "audit/", 10, time.Hour))
	f.logFiles.withFiles("db-2", 1000, descriptors(3, "audit/", 10, time.Hour))
	f.logFiles.failOn("db-2", 0, errors.New("Throttling"))

	report := f.uc.Run(context.Background(), validConfig())

	assert.False(t, report.Succeeded())
	assert.Equal(t, http.StatusInternalServerError, report.StatusCode())
	assert.Len(t, f.sink.forInstance("db-1"), 2)
	assert.Empty(t, f.sink.forInstance("db-2"))

	failed := report.Failures()
	require.Len(t, failed, 1)
	assert.Equal(t, "db-2", failed[0].Instance.Identifier)

	var instErr *types.InstanceError
	require.ErrorAs(t, failed[0].Err, &instErr)
	assert.Equal(t, types.StageListLogFiles, instErr.Stage)
	assert.ErrorIs(t, failed[0].Err, types.ErrUpstreamUnavailable)

	assert.Contains(t, report.Summary(), "1 of 2 instances failed")
	assert.Contains(t, report.Summary(), "db-2")
	assert.NotEmpty(t, report.Outcomes[1].Error)
}

func TestRunPublishFailureKeepsAggregate(t *testing.T) {
	f := newMonitorFixture("db-1")
	f.logFiles.withFiles("db-1", 1000, descriptors(4, "slowquery/", 25, time.Hour))
	f.sink.fail = func(entity.MetricDatum) error { return errors.New("AccessDenied") }

	report := f.uc.Run(context.Background(), validConfig())

	assert.Equal(t, http.StatusInternalServerError, report.StatusCode())
	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	require.NotNil(t, outcome.Result)
	assert.Equal(t, int64(100), outcome.Result.TotalSizeBytes)
	assert.False(t, outcome.Published)
	assert.ErrorIs(t, outcome.Err, types.ErrPublishFailure)

	var instErr *types.InstanceError
	require.ErrorAs(t, outcome.Err, &instErr)
	assert.Equal(t, types.StagePublish, instErr.Stage)
}

func TestRunInvalidConfigMakesNoCalls(t *testing.T) {
	f := newMonitorFixture("db-1")
	cfg := validConfig()
	cfg.MetricsNamespace = ""

	report := f.uc.Run(context.Background(), cfg)

	assert.Equal(t, http.StatusInternalServerError, report.StatusCode())
	assert.ErrorIs(t, report.Err, types.ErrConfiguration)
	assert.Contains(t, report.Error, "metrics namespace")
	assert.Zero(t, f.instances.calls)
	assert.Empty(t, f.sink.points)
	assert.True(t, IsConfigurationError(report.Err))
}

func TestRunInstanceListingFailure(t *testing.T) {
	f := newMonitorFixture()
	f.instances.err = errors.New("DBClusterNotFoundFault")

	report := f.uc.Run(context.Background(), validConfig())

	assert.False(t, report.Succeeded())
	assert.ErrorIs(t, report.Err, types.ErrUpstreamUnavailable)
	assert.Empty(t, report.Outcomes)
}

func TestRunEmptyClusterSucceeds(t *testing.T) {
	f := newMonitorFixture()

	report := f.uc.Run(context.Background(), validConfig())

	assert.True(t, report.Succeeded())
	assert.True(t, f.console.contains("has no instances"))
}

func TestRunResultIndependentOfPageSplit(t *testing.T) {
	files := append(descriptors(1200, "error/", 3, 800*time.Hour), descriptors(900, "general/", 5, time.Hour)...)

	var sizes, counts []float64
	for _, pageSize := range []int{1000, 700, 1} {
		f := newMonitorFixture("db-1")
		f.logFiles.withFiles("db-1", pageSize, files)
		f.uc.pageSize = pageSize

		report := f.uc.Run(context.Background(), validConfig())
		require.True(t, report.Succeeded(), report.Summary())

		points := f.sink.forInstance("db-1")
		sizes = append(sizes, metricValue(t, points, "TotalLogFileSize"))
		counts = append(counts, metricValue(t, points, "OverThresholdLogFileCount"))
	}

	for i := range sizes {
		assert.Equal(t, float64(1200*3+900*5), sizes[i])
		assert.Equal(t, 1200.0, counts[i])
	}
}

func TestRunSizeThresholdIsInformational(t *testing.T) {
	f := newMonitorFixture("db-1")
	f.logFiles.withFiles("db-1", 1000, descriptors(2, "error/", 1<<30, time.Hour))
	cfg := validConfig()
	cfg.SizeThresholdGB = 1

	report := f.uc.Run(context.Background(), cfg)

	assert.True(t, report.Succeeded())
	assert.True(t, report.Outcomes[0].Result.SizeThresholdExceeded)
	assert.True(t, f.console.contains("Disk space threshold you specified has been exceeded!!"))
	assert.Len(t, f.sink.forInstance("db-1"), 2)
}

func TestRunListFilesKeepsDescriptors(t *testing.T) {
	f := newMonitorFixture("db-1")
	f.logFiles.withFiles("db-1", 1000, descriptors(3, "audit/", 1, time.Hour))
	cfg := validConfig()
	cfg.ListFiles = true

	report := f.uc.Run(context.Background(), cfg)

	require.True(t, report.Succeeded())
	assert.Len(t, report.Outcomes[0].Result.Files, 3)
	assert.True(t, f.console.contains("Log files of db-1"))
}

func TestRunIdentityFailureIsOnlyAWarning(t *testing.T) {
	f := newMonitorFixture()
	f.uc.deps.Identity = fakeIdentity{err: errors.New("ExpiredToken")}

	report := f.uc.Run(context.Background(), validConfig())

	assert.True(t, report.Succeeded())
	assert.Empty(t, report.AccountID)
	assert.True(t, f.console.contains("Could not resolve the AWS account id"))
}

func TestResolveConfigPrecedence(t *testing.T) {
	cfgRepo := &fakeConfig{
		file: &types.RunConfig{ClusterIdentifier: "from-file", MetricsNamespace: "File/NS", Concurrency: 8},
		env:  &types.RunConfig{ClusterIdentifier: "from-env", SizeThresholdGB: 5},
	}
	cfg, err := ResolveConfig(cfgRepo, &types.CLIArgs{
		ConfigFile: "monitor.yaml",
		Overrides:  types.RunConfig{ClusterIdentifier: "from-flag"},
	})
	require.NoError(t, err)

	assert.Equal(t, "monitor.yaml", cfgRepo.path)
	assert.Equal(t, "from-flag", cfg.ClusterIdentifier)
	assert.Equal(t, 5.0, cfg.SizeThresholdGB)
	assert.Equal(t, "File/NS", cfg.MetricsNamespace)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 300, cfg.TimeoutSeconds)
}

func TestResolveConfigMissingFile(t *testing.T) {
	_, err := ResolveConfig(&fakeConfig{}, &types.CLIArgs{ConfigFile: "missing.toml"})
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestResolveConfigWithoutRepository(t *testing.T) {
	cfg, err := ResolveConfig(nil, &types.CLIArgs{Overrides: types.RunConfig{ClusterIdentifier: "c"}})
	require.NoError(t, err)
	assert.Equal(t, "c", cfg.ClusterIdentifier)
	assert.Equal(t, types.BackendCloudWatch, cfg.MetricsBackend)
}

func TestRunInstanceWithoutLogFilesPublishesZeros(t *testing.T) {
	f := newMonitorFixture("db-1")
	f.logFiles.withFiles("db-1", 1000, nil)

	report := f.uc.Run(context.Background(), validConfig())

	require.True(t, report.Succeeded(), report.Summary())
	points := f.sink.forInstance("db-1")
	require.Len(t, points, 2)
	assert.Zero(t, metricValue(t, points, "TotalLogFileSize"))
	assert.Zero(t, metricValue(t, points, "OverThresholdLogFileCount"))
	assert.Equal(t, []string{""}, f.logFiles.calls("db-1"))
}

func TestRunDropsDiagnosticsOfFailedInstance(t *testing.T) {
	f := newMonitorFixture("db-1", "db-2")
	f.logFiles.withFiles("db-1", 1000, descriptors(1500, "error/", 1, 800*time.Hour))
	f.logFiles.failOn("db-1", 1, errors.New("Throttling"))
	f.logFiles.withFiles("db-2", 1000, descriptors(2, "error/", 1, 800*time.Hour))

	report := f.uc.Run(context.Background(), validConfig())

	require.Len(t, report.Failures(), 1)
	assert.Empty(t, f.diagnostics.forInstance("db-1"))
	assert.Len(t, f.diagnostics.forInstance("db-2"), 2)
}

func TestRunCapsShippedDiagnosticsPerInstance(t *testing.T) {
	f := newMonitorFixture("db-1")
	f.logFiles.withFiles("db-1", 1000, descriptors(DiagnosticsPerInstance+250, "error/", 1, 800*time.Hour))

	report := f.uc.Run(context.Background(), validConfig())

	require.True(t, report.Succeeded(), report.Summary())
	shipped := f.diagnostics.forInstance("db-1")
	require.Len(t, shipped, DiagnosticsPerInstance+1)
	last := shipped[len(shipped)-1]
	assert.Equal(t, entity.DiagnosticTruncated, last.Kind)
	assert.Contains(t, last.Message, "250 further diagnostics")
	assert.Equal(t, float64(DiagnosticsPerInstance+250), metricValue(t, f.sink.forInstance("db-1"), "OverThresholdLogFileCount"))
}

func TestRunWithoutDiagnosticsSinkStillLogs(t *testing.T) {
	f := newMonitorFixture("db-1")
	f.uc.deps.Diagnostics = nil
	f.logFiles.withFiles("db-1", 1000, descriptors(3, "general/", 1, 48*time.Hour))

	report := f.uc.Run(context.Background(), validConfig())

	require.True(t, report.Succeeded(), report.Summary())
	assert.True(t, f.console.contains("There are log files that have exceeded the rotation period !! - general/0002.log"))
	assert.Zero(t, f.diagnostics.ships)
}

func TestInstanceDiagnosticsRetention(t *testing.T) {
	stale := entity.Diagnostic{Kind: entity.DiagnosticStaleLogFile, InstanceID: "db-1", Message: "stale"}

	t.Run("without sink nothing is kept", func(t *testing.T) {
		con := &quietConsole{}
		d := newInstanceDiagnostics(con, false)
		for i := 0; i < 5000; i++ {
			d.add(stale)
		}
		assert.Empty(t, d.kept)
		assert.Zero(t, d.dropped)
		assert.Empty(t, d.drain(fixedNow))
		assert.Len(t, con.lines, 5000)
	})

	t.Run("with sink the buffer is bounded", func(t *testing.T) {
		d := newInstanceDiagnostics(&quietConsole{}, true)
		for i := 0; i < DiagnosticsPerInstance+3; i++ {
			d.add(stale)
		}
		assert.Len(t, d.kept, DiagnosticsPerInstance)
		assert.Equal(t, 3, d.dropped)

		out := d.drain(fixedNow)
		assert.Len(t, out, DiagnosticsPerInstance+1)
		assert.Equal(t, "db-1", out[len(out)-1].InstanceID)
		assert.Empty(t, d.drain(fixedNow))
	})
}
