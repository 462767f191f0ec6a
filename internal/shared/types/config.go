package types

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

const bytesPerGB = 1024 * 1024 * 1024

// Metrics backends accepted by RunConfig.MetricsBackend.
const (
	BackendCloudWatch = "cloudwatch"
	BackendPrometheus = "prometheus"
	BackendBoth       = "both"
	BackendNone       = "none"
)

var validReportTypes = []string{"csv", "json", "pdf"}

// RunConfig is the validated configuration of one monitoring pass.
// It can be loaded from a file, from the environment or from CLI flags.
type RunConfig struct {
	ClusterIdentifier       string  `json:"cluster_identifier" yaml:"cluster_identifier" toml:"cluster_identifier"`
	SizeThresholdGB         float64 `json:"size_threshold_gb" yaml:"size_threshold_gb" toml:"size_threshold_gb"`
	MetricsNamespace        string  `json:"metrics_namespace" yaml:"metrics_namespace" toml:"metrics_namespace"`
	SizeMetricName          string  `json:"size_metric_name" yaml:"size_metric_name" toml:"size_metric_name"`
	OverThresholdMetricName string  `json:"over_threshold_metric_name" yaml:"over_threshold_metric_name" toml:"over_threshold_metric_name"`

	Profile           string `json:"profile" yaml:"profile" toml:"profile"`
	Region            string `json:"region" yaml:"region" toml:"region"`
	Concurrency       int    `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	TimeoutSeconds    int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	MaxAttempts       int    `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts"`
	MaxBackoffSeconds int    `json:"max_backoff_seconds" yaml:"max_backoff_seconds" toml:"max_backoff_seconds"`

	MetricsBackend      string `json:"metrics_backend" yaml:"metrics_backend" toml:"metrics_backend"`
	PrometheusTextfile  string `json:"prometheus_textfile" yaml:"prometheus_textfile" toml:"prometheus_textfile"`
	DiagnosticsLogGroup string `json:"diagnostics_log_group" yaml:"diagnostics_log_group" toml:"diagnostics_log_group"`

	ReportName   string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType   []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	ReportDir    string   `json:"report_dir" yaml:"report_dir" toml:"report_dir"`
	ReportBucket string   `json:"report_bucket" yaml:"report_bucket" toml:"report_bucket"`

	TraceEndpoint string `json:"trace_endpoint" yaml:"trace_endpoint" toml:"trace_endpoint"`
	Trace         bool   `json:"trace" yaml:"trace" toml:"trace"`
	ListFiles     bool   `json:"list_files" yaml:"list_files" toml:"list_files"`
	DryRun        bool   `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
	Plain         bool   `json:"plain" yaml:"plain" toml:"plain"`
}

// DefaultRunConfig returns the settings used when nothing else is configured.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Concurrency:       4,
		TimeoutSeconds:    300,
		MaxAttempts:       3,
		MaxBackoffSeconds: 20,
		MetricsBackend:    BackendCloudWatch,
		ReportType:        []string{"csv"},
	}
}

// SizeBreachBytes is the smallest total log size, in bytes, that exceeds the
// GB threshold. Zero means no threshold. Any positive threshold yields at
// least 1, and huge thresholds clamp at math.MaxInt64.
func (c *RunConfig) SizeBreachBytes() int64 {
	if !(c.SizeThresholdGB > 0) {
		return 0
	}
	b := math.Floor(c.SizeThresholdGB*bytesPerGB) + 1
	if b >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(b)
}

// Timeout is the overall budget of the run.
func (c *RunConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxBackoff caps the delay between retries of a single API call.
func (c *RunConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffSeconds) * time.Second
}

// UsesCloudWatch reports whether data points go to CloudWatch.
func (c *RunConfig) UsesCloudWatch() bool {
	return c.MetricsBackend == BackendCloudWatch || c.MetricsBackend == BackendBoth
}

// UsesPrometheus reports whether data points go to the Prometheus textfile.
func (c *RunConfig) UsesPrometheus() bool {
	return c.MetricsBackend == BackendPrometheus || c.MetricsBackend == BackendBoth
}

// Overlay copies every non-zero field of src over c.
func (c *RunConfig) Overlay(src *RunConfig) {
	if src == nil {
		return
	}
	setString(&c.ClusterIdentifier, src.ClusterIdentifier)
	setString(&c.MetricsNamespace, src.MetricsNamespace)
	setString(&c.SizeMetricName, src.SizeMetricName)
	setString(&c.OverThresholdMetricName, src.OverThresholdMetricName)
	setString(&c.Profile, src.Profile)
	setString(&c.Region, src.Region)
	setString(&c.MetricsBackend, src.MetricsBackend)
	setString(&c.PrometheusTextfile, src.PrometheusTextfile)
	setString(&c.DiagnosticsLogGroup, src.DiagnosticsLogGroup)
	setString(&c.ReportName, src.ReportName)
	setString(&c.ReportDir, src.ReportDir)
	setString(&c.ReportBucket, src.ReportBucket)
	setString(&c.TraceEndpoint, src.TraceEndpoint)

	if src.SizeThresholdGB != 0 {
		c.SizeThresholdGB = src.SizeThresholdGB
	}
	setInt(&c.Concurrency, src.Concurrency)
	setInt(&c.TimeoutSeconds, src.TimeoutSeconds)
	setInt(&c.MaxAttempts, src.MaxAttempts)
	setInt(&c.MaxBackoffSeconds, src.MaxBackoffSeconds)
	if len(src.ReportType) > 0 {
		c.ReportType = src.ReportType
	}

	c.Trace = c.Trace || src.Trace
	c.ListFiles = c.ListFiles || src.ListFiles
	c.DryRun = c.DryRun || src.DryRun
	c.Plain = c.Plain || src.Plain
}

// Validate checks every required setting and reports all problems at once.
func (c *RunConfig) Validate() error {
	var problems []string

	if strings.TrimSpace(c.ClusterIdentifier) == "" {
		problems = append(problems, "cluster identifier is required")
	}
	if !(c.SizeThresholdGB > 0) || math.IsInf(c.SizeThresholdGB, 1) {
		problems = append(problems, "size threshold must be a positive number of GB")
	}
	if strings.TrimSpace(c.MetricsNamespace) == "" {
		problems = append(problems, "metrics namespace is required")
	}
	if strings.TrimSpace(c.SizeMetricName) == "" {
		problems = append(problems, "size metric name is required")
	}
	if strings.TrimSpace(c.OverThresholdMetricName) == "" {
		problems = append(problems, "over-threshold metric name is required")
	}
	if c.Concurrency < 1 {
		problems = append(problems, "concurrency must be at least 1")
	}
	if c.TimeoutSeconds < 1 {
		problems = append(problems, "timeout must be at least 1 second")
	}
	if c.MaxAttempts < 1 {
		problems = append(problems, "max attempts must be at least 1")
	}

	switch c.MetricsBackend {
	case BackendCloudWatch, BackendNone:
	case BackendPrometheus, BackendBoth:
		if c.PrometheusTextfile == "" {
			problems = append(problems, "prometheus textfile path is required for the prometheus backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown metrics backend %q", c.MetricsBackend))
	}

	for _, t := range c.ReportType {
		if !slices.Contains(validReportTypes, t) {
			problems = append(problems, fmt.Sprintf("unknown report type %q", t))
		}
	}
	if c.ReportBucket != "" && !strings.HasPrefix(c.ReportBucket, "s3://") {
		problems = append(problems, "report bucket must look like s3://bucket/prefix")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
