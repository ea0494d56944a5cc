package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/thinhttp/packages/core/config"
	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/abdul-hamid-achik/thinhttp/packages/logger"
	"github.com/abdul-hamid-achik/thinhttp/packages/output"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// loadSettings reads the config file and layers the persistent flags on top.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}

	override := &config.Config{
		BaseURL:         baseURLFlag,
		Proxy:           proxyFlag,
		DefaultEncoding: encodingFlag,
		RequestIDHeader: requestIDFlag,
		History:         historyFlag,
	}

	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil || d <= 0 {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid timeout %q", timeoutFlag))
		}
		override.Timeout = int(d.Milliseconds())
	}
	if insecureFlag {
		override.Verify = config.BoolPtr(false)
	}
	if noColorFlag {
		override.NoColor = config.BoolPtr(true)
	}

	override.Headers, err = parseHeaders(defaultHdrFlags)
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	cookies, err := parsePairs(cookieFlags, "cookie")
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	if len(cookies) > 0 {
		override.Cookies = make(map[string]string, len(cookies))
		for name := range cookies {
			override.Cookies[name] = cookies.Get(name)
		}
	}

	cfg := fileConfig.Merge(override)
	if cmd.Flags().Changed("max-redirects") {
		if maxRedirectsFlag < 0 {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("max-redirects must be non-negative"))
		}
		cfg.MaxRedirects = maxRedirectsFlag
	}
	return cfg, nil
}

func clientOptions(cfg *config.Config) []http.ClientOption {
	opts := cfg.ClientOptions(newLogger())
	// ClientOptions treats 0 as unset; an explicit 0 from the flag disables redirects.
	if cfg.MaxRedirects == 0 {
		opts = append(opts, http.WithMaxRedirects(0))
	}
	return opts
}

func newLogger() zerolog.Logger {
	if debugFlag {
		return logger.New(os.Stderr, "debug", true)
	}
	return logger.Get()
}

func newConsole(cmd *cobra.Command, cfg *config.Config) *output.ConsoleFormatter {
	return output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(cfg.GetNoColor()),
	)
}

func validateOutput() error {
	switch outputFlag {
	case "console", "json":
		return nil
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown output format %q (use console or json)", outputFlag))
	}
}

// parseHeaders parses "Name: value" pairs.
func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected \"Name: value\")", v)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// parsePairs parses name=value pairs, keeping repeated names in order.
func parsePairs(values []string, kind string) (url.Values, error) {
	if len(values) == 0 {
		return nil, nil
	}
	pairs := make(url.Values, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid %s %q (expected name=value)", kind, v)
		}
		pairs.Add(name, value)
	}
	return pairs, nil
}

// parseJSONBody accepts inline JSON or @path to read it from a file ("@-" for stdin).
func parseJSONBody(raw string, stdin io.Reader) (any, error) {
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading JSON body: %w", err)
		}
	}
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return body, nil
}
