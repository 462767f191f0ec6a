package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
)

// Environment variables understood by LoadEnv. The first five keep the names
// the Lambda function has always been deployed with.
const (
	EnvCluster             = "AURORA_CLUSTER"
	EnvSizeThreshold       = "THRESHOLD_TOTAL_LOG_FILE_SIZE"
	EnvNamespace           = "METRICS_NAMESPACE"
	EnvSizeMetric          = "TOTAL_LOG_FILE_SIZE_METRICS_NAME"
	EnvOverThresholdMetric = "OVER_THRESHOLD_COUNT_METRICS_NAME"

	envPrefix = "AURORA_LOGMON"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	v *viper.Viper
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	_ = v.BindEnv("cluster_identifier", EnvCluster)
	_ = v.BindEnv("size_threshold_gb", EnvSizeThreshold)
	_ = v.BindEnv("metrics_namespace", EnvNamespace)
	_ = v.BindEnv("size_metric_name", EnvSizeMetric)
	_ = v.BindEnv("over_threshold_metric_name", EnvOverThresholdMetric)

	// Remaining keys bind to AURORA_LOGMON_<KEY>.
	for _, key := range []string{
		"profile", "region", "concurrency", "timeout_seconds", "max_attempts",
		"max_backoff_seconds", "metrics_backend", "prometheus_textfile",
		"diagnostics_log_group", "report_name", "report_type", "report_dir",
		"report_bucket", "trace_endpoint", "trace", "list_files", "dry_run", "plain",
	} {
		_ = v.BindEnv(key)
	}

	return &ConfigRepositoryImpl{v: v}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.RunConfig, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

	// Verifica se o arquivo existe
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.RunConfig

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &config, nil
}

// LoadEnv reads the settings present in the environment. Unset variables
// leave their fields zero so they do not override other sources.
func (r *ConfigRepositoryImpl) LoadEnv() (*types.RunConfig, error) {
	v := r.v
	config := &types.RunConfig{
		ClusterIdentifier:       strings.TrimSpace(v.GetString("cluster_identifier")),
		MetricsNamespace:        strings.TrimSpace(v.GetString("metrics_namespace")),
		SizeMetricName:          strings.TrimSpace(v.GetString("size_metric_name")),
		OverThresholdMetricName: strings.TrimSpace(v.GetString("over_threshold_metric_name")),
		Profile:                 v.GetString("profile"),
		Region:                  v.GetString("region"),
		MetricsBackend:          v.GetString("metrics_backend"),
		PrometheusTextfile:      v.GetString("prometheus_textfile"),
		DiagnosticsLogGroup:     v.GetString("diagnostics_log_group"),
		ReportName:              v.GetString("report_name"),
		ReportDir:               v.GetString("report_dir"),
		ReportBucket:            v.GetString("report_bucket"),
		TraceEndpoint:           v.GetString("trace_endpoint"),
		Trace:                   v.GetBool("trace"),
		ListFiles:               v.GetBool("list_files"),
		DryRun:                  v.GetBool("dry_run"),
		Plain:                   v.GetBool("plain"),
	}

	if raw := strings.TrimSpace(v.GetString("size_threshold_gb")); raw != "" {
		gb, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number of GB, got %q", EnvSizeThreshold, raw)
		}
		config.SizeThresholdGB = gb
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"concurrency", &config.Concurrency},
		{"timeout_seconds", &config.TimeoutSeconds},
		{"max_attempts", &config.MaxAttempts},
		{"max_backoff_seconds", &config.MaxBackoffSeconds},
	}
	for _, i := range ints {
		raw := strings.TrimSpace(v.GetString(i.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s_%s must be an integer, got %q", envPrefix, strings.ToUpper(i.key), raw)
		}
		*i.dst = n
	}

	if raw := v.GetString("report_type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				config.ReportType = append(config.ReportType, t)
			}
		}
	}

	return config, nil
}
