package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diillson/aurora-logmon/internal/adapter/driving/bootstrap"
	"github.com/diillson/aurora-logmon/internal/application/usecase"
	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
	"github.com/diillson/aurora-logmon/pkg/console"
	"github.com/diillson/aurora-logmon/pkg/version"
)

// ErrRunFailed is returned when the run finished with at least one failure.
var ErrRunFailed = errors.New("monitoring run failed")

// Runner executes a monitoring pass for a resolved configuration.
type Runner func(ctx context.Context, cfg *types.RunConfig, con types.ConsoleInterface) (*entity.RunReport, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	runner     Runner
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(configRepo repository.ConfigRepository) *CLIApp {
	app := &CLIApp{
		configRepo: configRepo,
		runner:     bootstrap.Run,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:           "aurora-logmon",
		Short:         "Publish Aurora log file size and rotation metrics to CloudWatch",
		Version:       formattedVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "Aurora Log Monitor version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.String("cluster", "", "Aurora cluster identifier (env AURORA_CLUSTER)")
	flags.Float64("size-threshold-gb", 0, "Total log size threshold in GB (env THRESHOLD_TOTAL_LOG_FILE_SIZE)")
	flags.String("namespace", "", "CloudWatch metrics namespace (env METRICS_NAMESPACE)")
	flags.String("size-metric", "", "Metric name for the total log size (env TOTAL_LOG_FILE_SIZE_METRICS_NAME)")
	flags.String("over-threshold-metric", "", "Metric name for the stale log file count (env OVER_THRESHOLD_COUNT_METRICS_NAME)")
	flags.StringP("profile", "p", "", "AWS profile to use")
	flags.StringP("region", "r", "", "AWS region of the cluster")
	flags.Int("concurrency", 0, "Number of instances processed in parallel (default 4)")
	flags.Int("timeout", 0, "Overall timeout of the run in seconds (default 300)")
	flags.Int("max-attempts", 0, "Maximum attempts per AWS API call (default 3)")
	flags.Int("max-backoff", 0, "Maximum delay between retries in seconds (default 20)")
	flags.String("metrics-backend", "", "Where metrics go: cloudwatch, prometheus, both, none")
	flags.String("prometheus-textfile", "", "Path of the node_exporter textfile for the prometheus backend")
	flags.String("diagnostics-log-group", "", "CloudWatch Logs group that receives diagnostics")
	flags.StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	flags.StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.String("report-bucket", "", "Upload reports to s3://bucket/prefix")
	flags.Bool("list-files", false, "Show every log file of every instance")
	flags.Bool("dry-run", false, "Print metrics instead of publishing them")
	flags.Bool("plain", false, "Plain output without colors, spinners or progress bars")
	flags.Bool("trace", false, "Print OpenTelemetry spans to stderr")
	flags.String("trace-endpoint", "", "OTLP/HTTP endpoint for traces")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Aurora Log Monitor version: %s\n", version.FormatVersion())
		},
	})

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// SetRunner replaces how a run is executed.
func (app *CLIApp) SetRunner(runner Runner) {
	app.runner = runner
}

// SetArgs sets the arguments of the root command.
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// parseArgs parses command-line arguments into a CLIArgs struct.
// Only flags the user actually set become overrides.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	args := &types.CLIArgs{}
	o := &args.Overrides

	args.ConfigFile, _ = flags.GetString("config-file")
	o.ClusterIdentifier, _ = flags.GetString("cluster")
	o.SizeThresholdGB, _ = flags.GetFloat64("size-threshold-gb")
	o.MetricsNamespace, _ = flags.GetString("namespace")
	o.SizeMetricName, _ = flags.GetString("size-metric")
	o.OverThresholdMetricName, _ = flags.GetString("over-threshold-metric")
	o.Profile, _ = flags.GetString("profile")
	o.Region, _ = flags.GetString("region")
	o.Concurrency, _ = flags.GetInt("concurrency")
	o.TimeoutSeconds, _ = flags.GetInt("timeout")
	o.MaxAttempts, _ = flags.GetInt("max-attempts")
	o.MaxBackoffSeconds, _ = flags.GetInt("max-backoff")
	o.MetricsBackend, _ = flags.GetString("metrics-backend")
	o.PrometheusTextfile, _ = flags.GetString("prometheus-textfile")
	o.DiagnosticsLogGroup, _ = flags.GetString("diagnostics-log-group")
	o.ReportName, _ = flags.GetString("report-name")
	o.ReportType, _ = flags.GetStringSlice("report-type")
	o.ReportBucket, _ = flags.GetString("report-bucket")
	o.ListFiles, _ = flags.GetBool("list-files")
	o.DryRun, _ = flags.GetBool("dry-run")
	o.Plain, _ = flags.GetBool("plain")
	o.Trace, _ = flags.GetBool("trace")
	o.TraceEndpoint, _ = flags.GetString("trace-endpoint")

	if dir, _ := flags.GetString("dir"); dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		o.ReportDir = absDir
	}

	return args, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, _ []string) error {
	cliArgs, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}

	cfg, err := usecase.ResolveConfig(app.configRepo, cliArgs)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	con := console.NewConsole(console.WithPlain(cfg.Plain), console.WithWriter(cmd.OutOrStdout()))
	if !cfg.Plain {
		displayWelcomeBanner(cmd.OutOrStdout())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := app.runner(ctx, cfg, con)
	if err != nil {
		return err
	}
	if !report.Succeeded() {
		return fmt.Errorf("%w: %s", ErrRunFailed, report.Summary())
	}
	return nil
}
