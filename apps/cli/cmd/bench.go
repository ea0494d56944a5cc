package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/thinhttp/packages/bench"
	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench <url>",
	Short: "Benchmark an endpoint with concurrent requests",
	Long: `Issue the same request repeatedly through the async client and report
throughput, status codes and latency percentiles.

Examples:
  # 1000 requests, 50 at a time
  thinhttp bench https://api.example.com/health -n 1000 -c 50

  # Run for 30 seconds at 200 req/s
  thinhttp bench https://api.example.com/health --duration 30s --rate 200

  # Fail in CI when more than 1% of requests error
  thinhttp bench https://api.example.com/health -n 500 --max-error-rate 0.01`,
	Args: cobra.ExactArgs(1),
	RunE: benchCommand,
}

var (
	benchRequestsFlag     int
	benchDurationFlag     string
	benchConcurrencyFlag  int
	benchRateFlag         float64
	benchMethodFlag       string
	benchMaxErrorRateFlag float64
	benchRequestFlags     = &requestFlags{}
)

func init() {
	benchCmd.Flags().IntVarP(&benchRequestsFlag, "requests", "n", 0, "Total number of requests (default 100 when --duration is not set)")
	benchCmd.Flags().StringVar(&benchDurationFlag, "duration", "", "Keep issuing requests for this long (e.g., 30s, 5m)")
	benchCmd.Flags().IntVarP(&benchConcurrencyFlag, "concurrency", "c", 10, "Maximum requests in flight")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Target requests per second (0 = unlimited)")
	benchCmd.Flags().StringVarP(&benchMethodFlag, "method", "X", "GET", "HTTP method")
	benchCmd.Flags().Float64Var(&benchMaxErrorRateFlag, "max-error-rate", 1, "Exit with an error when the failed share exceeds this (0..1)")
	benchCmd.Flags().StringArrayVarP(&benchRequestFlags.headers, "header", "H", nil, "Request header (\"Name: value\", repeatable)")
	benchCmd.Flags().StringArrayVarP(&benchRequestFlags.params, "param", "q", nil, "Query parameter (name=value, repeatable)")
	benchCmd.Flags().StringArrayVarP(&benchRequestFlags.data, "data", "d", nil, "Form field (name=value, repeatable)")
	benchCmd.Flags().StringVar(&benchRequestFlags.json, "json", "", "JSON body, inline or @file")
}

func buildBenchConfig() (*bench.Config, error) {
	cfg := bench.DefaultConfig()
	cfg.Concurrency = benchConcurrencyFlag
	cfg.Rate = benchRateFlag

	if benchDurationFlag != "" {
		d, err := time.ParseDuration(benchDurationFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid duration: %w", err)
		}
		cfg.Duration = d
		cfg.Requests = 0
	}
	if benchRequestsFlag > 0 {
		cfg.Requests = benchRequestsFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func benchCommand(cmd *cobra.Command, args []string) error {
	if err := validateOutput(); err != nil {
		return err
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cfg, err := buildBenchConfig()
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	req, err := benchRequestFlags.build(benchMethodFlag, args[0], cmd.InOrStdin())
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reporter := bench.NewReporter(
		bench.WithWriter(cmd.OutOrStdout()),
		bench.WithNoColor(settings.GetNoColor()),
	)

	var summary *bench.Summary
	err = http.WithAsyncClient(ctx, clientOptions(settings), func(client *http.AsyncClient) error {
		runner, err := bench.NewRunner(client, cfg)
		if err != nil {
			return err
		}
		if outputFlag == "console" {
			reporter.Header(req.Method, requestURL(settings, req), cfg)
		}
		summary, err = runner.Run(ctx, req)
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopped early")
			return nil
		}
		return err
	})
	if err != nil {
		if summary == nil {
			return withExitCode(ExitConfigError, err)
		}
		return err
	}

	if outputFlag == "json" {
		if err := reporter.JSON(summary); err != nil {
			return err
		}
	} else {
		reporter.Summary(summary)
	}

	if err := summary.Check(benchMaxErrorRateFlag); err != nil {
		return withExitCode(ExitCheckFailure, err)
	}
	return nil
}
