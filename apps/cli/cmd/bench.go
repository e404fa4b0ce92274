package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/bench"
	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/abdul-hamid-achik/persephone/packages/metrics"
	"github.com/abdul-hamid-achik/persephone/packages/xhr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	benchFlags requestFlags

	benchMethodFlag      string
	benchRequestsFlag    int
	benchDurationFlag    string
	benchRateFlag        float64
	benchConcurrencyFlag int
	benchThresholdFlag   string
	benchMetricsFileFlag string
	benchMetricsPortFlag int
)

var benchCmd = &cobra.Command{
	Use:   "bench <url>",
	Short: "Fire many calls at one endpoint and report latency",
	Long: `Fire a batch of calls at one endpoint and summarize outcomes and latency
percentiles. Every settlement counts: rejections are grouped by kind.

Examples:
  persephone bench https://api.example.com/health -n 500 -c 20
  persephone bench https://api.example.com/users --rate 50 --duration 30s
  persephone bench https://api.example.com/users -n 1000 --threshold "p95<200ms,errors<1%"
  persephone bench https://api.example.com/users -n 1000 --metrics-file bench.prom`,
	Args: cobra.ExactArgs(1),
	RunE: benchCommand,
}

func init() {
	addRequestFlags(benchCmd, &benchFlags)
	benchCmd.Flags().MarkHidden("query")
	benchCmd.Flags().MarkHidden("schema")

	benchCmd.Flags().StringVarP(&benchMethodFlag, "method", "X", "GET", "Request method")
	benchCmd.Flags().IntVarP(&benchRequestsFlag, "requests", "n", getEnvInt("PERSEPHONE_BENCH_REQUESTS", 100), "Total number of calls, 0 runs until --duration (env: PERSEPHONE_BENCH_REQUESTS)")
	benchCmd.Flags().StringVar(&benchDurationFlag, "duration", "0s", "Stop issuing calls after this long (e.g., 30s, 5m)")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Target calls per second, 0 is unpaced")
	benchCmd.Flags().IntVarP(&benchConcurrencyFlag, "concurrency", "c", 0, "Max calls in flight (default from config, 5)")
	benchCmd.Flags().StringVar(&benchThresholdFlag, "threshold", "", "Pass/fail thresholds (e.g., \"p95<200ms,errors<0.1%\")")
	benchCmd.Flags().StringVar(&benchMetricsFileFlag, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	benchCmd.Flags().IntVar(&benchMetricsPortFlag, "metrics-port", 0, "Serve Prometheus metrics on this port during the run")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	method, err := parseMethod(benchMethodFlag)
	if err != nil {
		return exitError(ExitUsageError, err)
	}
	duration, err := time.ParseDuration(benchDurationFlag)
	if err != nil {
		return exitError(ExitUsageError, fmt.Errorf("invalid duration value %q: %w", benchDurationFlag, err))
	}
	thresholds, err := bench.ParseThresholds(benchThresholdFlag)
	if err != nil {
		return exitError(ExitUsageError, err)
	}
	cmd.SilenceUsage = true

	ce, err := benchFlags.prepare(cmd)
	if err != nil {
		return err
	}

	concurrency := benchConcurrencyFlag
	if concurrency <= 0 {
		concurrency = ce.cfg.Concurrency
	}
	config := &bench.Config{
		Requests:    benchRequestsFlag,
		Duration:    duration,
		Rate:        benchRateFlag,
		Concurrency: concurrency,
		Thresholds:  thresholds,
	}
	if err := config.Validate(); err != nil {
		return exitError(ExitUsageError, err)
	}

	registry := prometheus.NewRegistry()
	client := http.NewClient(ce.clientOptions(
		http.WithObserver(metrics.NewCollector(registry)),
		http.WithTransportOptions(xhr.WithMaxConnsPerHost(concurrency)),
	)...)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if benchMetricsPortFlag > 0 {
		go func() {
			if err := metrics.Serve(ctx, benchMetricsPortFlag, registry); err != nil && ce.logger != nil {
				ce.logger.Printf("metrics server: %v", err)
			}
		}()
	}

	url := ce.resolver.Resolve(args[0])
	reqOpts := ce.requestOptions()
	runner := bench.NewRunner(config, func(ctx context.Context) (*http.Response, error) {
		return client.Fetch(ctx, url, method, reqOpts...)
	})

	ce.formatter.FormatHeader(version)
	result, err := runner.Run(ctx)
	if err != nil {
		return exitError(ExitUsageError, err)
	}
	ce.formatter.FormatSummary(result.Summary, result.Thresholds)

	if benchMetricsFileFlag != "" {
		if err := metrics.WriteFile(benchMetricsFileFlag, registry); err != nil {
			return exitError(ExitConfigError, err)
		}
	}

	if result.HasThresholdFailures() {
		return exitError(ExitRejected, nil)
	}
	return nil
}
