package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/thinhttp/packages/assertions"
	"github.com/abdul-hamid-achik/thinhttp/packages/capture"
	"github.com/abdul-hamid-achik/thinhttp/packages/core/config"
	"github.com/abdul-hamid-achik/thinhttp/packages/history"
	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/abdul-hamid-achik/thinhttp/packages/output"
	"github.com/spf13/cobra"
)

// requestFlags are the per-request flags shared by every verb command.
type requestFlags struct {
	headers  []string
	params   []string
	data     []string
	json     string
	query    string
	captures []string
	expect   string
	schema   string
}

func (f *requestFlags) register(cmd *cobra.Command, withBody bool) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Request header (\"Name: value\", repeatable)")
	cmd.Flags().StringArrayVarP(&f.params, "param", "q", nil, "Query parameter (name=value, repeatable)")
	if withBody {
		cmd.Flags().StringArrayVarP(&f.data, "data", "d", nil, "Form field (name=value, repeatable); takes precedence over --json")
		cmd.Flags().StringVar(&f.json, "json", "", "JSON body, inline or @file (@- for stdin)")
	}
	cmd.Flags().StringVar(&f.query, "query", "", "Print only the value at this gjson path of the response body")
	cmd.Flags().StringArrayVarP(&f.captures, "capture", "c", nil, "Capture a value (name=body:path, name=header:Name, name=status, repeatable)")
	cmd.Flags().StringVar(&f.expect, "expect", "", "Expected status (e.g., 200, 4xx); non-2xx responses that match are not errors")
	cmd.Flags().StringVar(&f.schema, "schema", "", "Validate the response body against this JSON Schema file")
}

func (f *requestFlags) build(method, target string, stdin io.Reader) (*http.Request, error) {
	req := http.NewRequest(strings.ToUpper(method), target)

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	params, err := parsePairs(f.params, "query parameter")
	if err != nil {
		return nil, err
	}
	req.Params = params

	data, err := parsePairs(f.data, "form field")
	if err != nil {
		return nil, err
	}
	req.Data = data

	body, err := parseJSONBody(f.json, stdin)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.SetJSON(body)
	}
	return req, nil
}

func (f *requestFlags) parseCaptures() ([]*capture.Capture, error) {
	pairs, err := parsePairs(f.captures, "capture")
	if err != nil {
		return nil, err
	}
	var captures []*capture.Capture
	for name, exprs := range pairs {
		for _, expr := range exprs {
			c, err := capture.Parse(name, expr)
			if err != nil {
				return nil, err
			}
			captures = append(captures, c)
		}
	}
	return captures, nil
}

// verbCommands builds get, post, put, patch and delete.
func verbCommands() []*cobra.Command {
	verbs := []struct {
		method   string
		withBody bool
		example  string
	}{
		{"GET", false, `  thinhttp get https://httpbin.org/get -q page=2
  thinhttp get /users/1 --base-url https://api.example.com --query name`},
		{"POST", true, `  thinhttp post https://httpbin.org/post --json '{"name":"alice"}'
  thinhttp post https://httpbin.org/post -d user=alice -d role=admin`},
		{"PUT", true, `  thinhttp put https://httpbin.org/put --json @user.json`},
		{"PATCH", true, `  thinhttp patch https://httpbin.org/patch --json '{"active":false}'`},
		{"DELETE", false, `  thinhttp delete https://httpbin.org/delete --expect 2xx`},
	}

	cmds := make([]*cobra.Command, 0, len(verbs))
	for _, v := range verbs {
		flags := &requestFlags{}
		method := v.method
		cmd := &cobra.Command{
			Use:     strings.ToLower(method) + " <url>",
			Short:   fmt.Sprintf("Send a %s request", method),
			Example: v.example,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRequest(cmd, flags, method, args[0])
			},
		}
		flags.register(cmd, v.withBody)
		cmds = append(cmds, cmd)
	}
	return cmds
}

var requestCmdFlags = &requestFlags{}

var requestCmd = &cobra.Command{
	Use:   "request <method> <url>",
	Short: "Send a request with an arbitrary method",
	Example: `  thinhttp request OPTIONS https://httpbin.org/anything
  thinhttp request HEAD https://example.com -v`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, requestCmdFlags, args[0], args[1])
	},
}

func init() {
	requestCmdFlags.register(requestCmd, true)
}

// requestResult is everything the renderers need from one call.
type requestResult struct {
	resp     *http.Response
	err      error
	query    *string
	queryErr error
	captures map[string]any
	checks   []*assertions.Result
}

// checked returns the response to run checks against: the successful one, or
// the one carried by a status error.
func (r *requestResult) checked() *http.Response {
	if r.resp != nil {
		return r.resp
	}
	if he, ok := http.AsHTTPError(r.err); ok {
		return he.Response
	}
	return nil
}

func runRequest(cmd *cobra.Command, flags *requestFlags, method, target string) error {
	if err := validateOutput(); err != nil {
		return err
	}
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	req, err := flags.build(method, target, cmd.InOrStdin())
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	captures, err := flags.parseCaptures()
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := &requestResult{}
	err = http.WithClient(clientOptions(cfg), func(c *http.Client) error {
		result.resp, result.err = c.Do(ctx, req)
		return nil
	})
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	recordHistory(ctx, cfg, req, result)

	if resp := result.checked(); resp != nil {
		if flags.query != "" {
			raw, err := capture.Query(resp, flags.query)
			if err != nil {
				result.queryErr = err
			} else {
				result.query = &raw
			}
		}
		if len(captures) > 0 {
			result.captures = capture.ExtractAll(resp, captures)
		}
		if flags.expect != "" {
			result.checks = append(result.checks, assertions.ExpectStatus(resp, flags.expect))
		}
		if flags.schema != "" {
			result.checks = append(result.checks, assertions.ValidateSchemaFile(resp, flags.schema))
		}
	}

	if err := render(cmd, cfg, result); err != nil {
		return err
	}
	return exitFor(flags, result)
}

func recordHistory(ctx context.Context, cfg *config.Config, req *http.Request, result *requestResult) {
	if cfg.History == "" {
		return
	}
	log := newLogger()
	store, err := history.Open(cfg.History)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.History).Msg("history unavailable")
		return
	}
	defer store.Close()

	entry := history.NewEntry(req.Method, requestURL(cfg, req), result.resp, result.err)
	if err := store.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("recording history")
	}
}

func render(cmd *cobra.Command, cfg *config.Config, result *requestResult) error {
	if outputFlag == "json" {
		f := output.NewJSONFormatter(cmd.OutOrStdout())
		if result.err != nil {
			f.AddError(result.err)
		} else {
			f.AddResponse(result.resp)
		}
		if result.query != nil {
			f.AddQuery(*result.query)
		}
		f.AddCaptures(result.captures)
		f.AddAssertions(result.checks)
		return f.Flush()
	}

	console := newConsole(cmd, cfg)
	switch {
	case result.query != nil:
		console.FormatValue(*result.query)
	case result.err != nil:
		console.FormatError(result.err)
	default:
		console.FormatResponse(result.resp)
	}
	if len(result.captures) > 0 {
		console.FormatCaptures(result.captures)
	}
	if len(result.checks) > 0 {
		console.FormatAssertions(result.checks)
	}
	return nil
}

func exitFor(flags *requestFlags, result *requestResult) error {
	if result.queryErr != nil {
		return withExitCode(ExitCheckFailure, result.queryErr)
	}
	if len(result.checks) > 0 && !assertions.AllPassed(result.checks) {
		return withExitCode(ExitCheckFailure, nil)
	}
	if result.err == nil {
		return nil
	}
	if http.IsTransportError(result.err) {
		// Already rendered to stdout; stderr only needs the code.
		return withExitCode(ExitNetworkError, nil)
	}
	if flags.expect != "" {
		// The status matched --expect, so a non-2xx reply is what was asked for.
		return nil
	}
	return withExitCode(ExitHTTPError, nil)
}

// requestURL is the URL recorded for a request that never got a response.
func requestURL(cfg *config.Config, req *http.Request) string {
	var base *url.URL
	if cfg.BaseURL != "" {
		base, _ = url.Parse(cfg.BaseURL)
	}
	if u, err := req.BuildURL(base); err == nil {
		return u.String()
	}
	return req.URL
}
