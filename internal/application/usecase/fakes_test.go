package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/shared/types"
)

// fakeLogFiles serves pre-split pages. The marker of page i+1 is "m<i+1>".
type fakeLogFiles struct {
	mu      sync.Mutex
	pages   map[string][]entity.LogFilePage
	errs    map[string]map[int]error
	markers map[string][]string
}

func newFakeLogFiles() *fakeLogFiles {
	return &fakeLogFiles{
		pages:   map[string][]entity.LogFilePage{},
		errs:    map[string]map[int]error{},
		markers: map[string][]string{},
	}
}

// withFiles splits files into pages of pageSize and chains them with markers.
func (f *fakeLogFiles) withFiles(instanceID string, pageSize int, files []entity.LogFileDescriptor) *fakeLogFiles {
	var pages []entity.LogFilePage
	for start := 0; start < len(files) || start == 0; start += pageSize {
		end := min(start+pageSize, len(files))
		pages = append(pages, entity.LogFilePage{Files: files[start:end]})
		if end == len(files) {
			break
		}
	}
	for i := range pages[:len(pages)-1] {
		pages[i].NextMarker = "m" + strconv.Itoa(i+1)
	}
	f.pages[instanceID] = pages
	return f
}

func (f *fakeLogFiles) failOn(instanceID string, page int, err error) *fakeLogFiles {
	if f.errs[instanceID] == nil {
		f.errs[instanceID] = map[int]error{}
	}
	f.errs[instanceID][page] = err
	return f
}

func (f *fakeLogFiles) ListLogFiles(_ context.Context, instanceID, marker string) (entity.LogFilePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markers[instanceID] = append(f.markers[instanceID], marker)

	idx := 0
	if marker != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(marker, "m"))
		if err != nil {
			return entity.LogFilePage{}, fmt.Errorf("bad marker %q", marker)
		}
		idx = n
	}
	if err := f.errs[instanceID][idx]; err != nil {
		return entity.LogFilePage{}, err
	}
	pages := f.pages[instanceID]
	if idx >= len(pages) {
		return entity.LogFilePage{}, nil
	}
	return pages[idx], nil
}

func (f *fakeLogFiles) calls(instanceID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.markers[instanceID]...)
}

type fakeInstances struct {
	instances []entity.DBInstance
	err       error
	calls     int
}

func (f *fakeInstances) ListInstances(_ context.Context, _ string) ([]entity.DBInstance, error) {
	f.calls++
	return f.instances, f.err
}

type published struct {
	namespace string
	datum     entity.MetricDatum
}

type fakeSink struct {
	mu     sync.Mutex
	points []published
	fail   func(entity.MetricDatum) error
}

func (f *fakeSink) PublishMetric(_ context.Context, namespace string, datum entity.MetricDatum) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		if err := f.fail(datum); err != nil {
			return err
		}
	}
	f.points = append(f.points, published{namespace: namespace, datum: datum})
	return nil
}

func (f *fakeSink) forInstance(instanceID string) []entity.MetricDatum {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.MetricDatum
	for _, p := range f.points {
		for _, d := range p.datum.Dimensions {
			if d.Name == DimensionInstance && d.Value == instanceID {
				out = append(out, p.datum)
			}
		}
	}
	return out
}

type fakeIdentity struct {
	accountID string
	err       error
}

func (f fakeIdentity) GetAccountID(context.Context) (string, error) {
	return f.accountID, f.err
}

type fakeDiagnostics struct {
	mu      sync.Mutex
	shipped []entity.Diagnostic
	ships   int
}

func (f *fakeDiagnostics) Ship(_ context.Context, diagnostics []entity.Diagnostic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ships++
	f.shipped = append(f.shipped, diagnostics...)
	return nil
}

func (f *fakeDiagnostics) forInstance(instanceID string) []entity.Diagnostic {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Diagnostic
	for _, d := range f.shipped {
		if d.InstanceID == instanceID {
			out = append(out, d)
		}
	}
	return out
}

type fakeConfig struct {
	file *types.RunConfig
	env  *types.RunConfig
	path string
}

func (f *fakeConfig) LoadConfigFile(path string) (*types.RunConfig, error) {
	f.path = path
	if f.file == nil {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return f.file, nil
}

func (f *fakeConfig) LoadEnv() (*types.RunConfig, error) {
	if f.env == nil {
		return &types.RunConfig{}, nil
	}
	return f.env, nil
}

// quietConsole records log lines instead of printing them.
type quietConsole struct {
	mu    sync.Mutex
	lines []string
}

func (c *quietConsole) record(level, format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, level+": "+fmt.Sprintf(format, a...))
}

func (c *quietConsole) Print(a ...interface{})                 { c.record("PRINT", "%s", fmt.Sprint(a...)) }
func (c *quietConsole) Printf(format string, a ...interface{}) { c.record("PRINT", format, a...) }
func (c *quietConsole) Println(a ...interface{})               { c.record("PRINT", "%s", fmt.Sprint(a...)) }
func (c *quietConsole) LogInfo(format string, a ...interface{}) {
	c.record("INFO", format, a...)
}
func (c *quietConsole) LogWarning(format string, a ...interface{}) {
	c.record("WARN", format, a...)
}
func (c *quietConsole) LogError(format string, a ...interface{}) {
	c.record("ERROR", format, a...)
}
func (c *quietConsole) LogSuccess(format string, a ...interface{}) {
	c.record("OK", format, a...)
}
func (c *quietConsole) Status(string) types.StatusHandle           { return noopHandle{} }
func (c *quietConsole) ProgressWithTotal(int) types.ProgressHandle { return noopHandle{} }
func (c *quietConsole) CreateTable() types.TableInterface          { return &noopTable{} }

func (c *quietConsole) contains(fragment string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if strings.Contains(l, fragment) {
			return true
		}
	}
	return false
}

type noopHandle struct{}

func (noopHandle) Update(string) {}
func (noopHandle) Increment()    {}
func (noopHandle) Stop()         {}

type noopTable struct{ rows int }

func (t *noopTable) AddColumn(string, ...interface{}) {}
func (t *noopTable) AddRow(...interface{})            { t.rows++ }
func (t *noopTable) Render() string                   { return fmt.Sprintf("<table %d rows>", t.rows) }

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func validConfig() *types.RunConfig {
	cfg := types.DefaultRunConfig()
	cfg.ClusterIdentifier = "aurora-prod"
	cfg.SizeThresholdGB = 10
	cfg.MetricsNamespace = "Custom/Aurora"
	cfg.SizeMetricName = "TotalLogFileSize"
	cfg.OverThresholdMetricName = "OverThresholdLogFileCount"
	return cfg
}

func descriptors(n int, prefix string, size int64, age time.Duration) []entity.LogFileDescriptor {
	files := make([]entity.LogFileDescriptor, n)
	for i := range files {
		files[i] = entity.LogFileDescriptor{
			Name:        fmt.Sprintf("%s%04d.log", prefix, i),
			SizeBytes:   size,
			LastWritten: fixedNow.Add(-age).UnixMilli(),
		}
	}
	return files
}
