package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag       string
	baseURLFlag      string
	timeoutFlag      string
	maxRedirectsFlag int
	insecureFlag     bool
	proxyFlag        string
	cookieFlags      []string
	defaultHdrFlags  []string
	encodingFlag     string
	requestIDFlag    string
	historyFlag      string
	outputFlag       string
	noColorFlag      bool
	verboseFlag      bool
	debugFlag        bool
)

var rootCmd = &cobra.Command{
	Use:   "thinhttp",
	Short: "A thin HTTP client for the command line",
	Long: `thinhttp issues HTTP requests with sane defaults: pooled connections,
bounded redirects, a single error type for every failure, and responses
you can query, validate and record.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", "", "Path to config file (default: search for .thinhttp.* in the current directory)")
	flags.StringVar(&baseURLFlag, "base-url", "", "Prefix for relative request URLs")
	flags.StringVar(&timeoutFlag, "timeout", "", "Request timeout (e.g., 500ms, 30s)")
	flags.IntVar(&maxRedirectsFlag, "max-redirects", 10, "Maximum number of redirects to follow")
	flags.BoolVarP(&insecureFlag, "insecure", "k", false, "Disable TLS certificate verification")
	flags.StringVar(&proxyFlag, "proxy", "", "Proxy URL for HTTP requests")
	flags.StringArrayVar(&cookieFlags, "cookie", nil, "Cookie sent with every request (name=value, repeatable)")
	flags.StringArrayVar(&defaultHdrFlags, "default-header", nil, "Header sent with every request (\"Name: value\", repeatable)")
	flags.StringVar(&encodingFlag, "encoding", "", "Text encoding used when a response declares no charset")
	flags.StringVar(&requestIDFlag, "request-id-header", "", "Stamp a fresh UUID into this header on every request")
	flags.StringVar(&historyFlag, "history", "", "Record requests in this sqlite file")
	flags.StringVarP(&outputFlag, "output", "o", "console", "Output format: console, json")
	flags.BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Show response headers and timing")
	flags.BoolVar(&debugFlag, "debug", false, "Log every request to stderr")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withExitCode(ExitUsageError, err)
	})

	for _, c := range verbCommands() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
