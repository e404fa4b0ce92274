package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/assertions"
	"github.com/abdul-hamid-achik/persephone/packages/capture"
	"github.com/abdul-hamid-achik/persephone/packages/core/config"
	"github.com/abdul-hamid-achik/persephone/packages/core/env"
	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/abdul-hamid-achik/persephone/packages/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// VariablePrefix marks process environment variables exposed to {{name}}
// interpolation with the prefix stripped.
const VariablePrefix = "PERSEPHONE_VAR_"

// requestFlags are shared by every command that performs calls.
type requestFlags struct {
	headers    []string
	data       string
	timeout    string
	baseURL    string
	errorCodes string
	whitelist  string
	queries    []string
	schema     string
	output     string
	locale     string
	proxy      string
	insecure   bool
	http2      bool
	configPath string
	envFile    string
	verbose    bool
	noColor    bool
}

func addRequestFlags(cmd *cobra.Command, f *requestFlags) {
	flags := cmd.Flags()

	flags.StringArrayVarP(&f.headers, "header", "H", nil, `Request header "Name: value" (repeatable)`)
	flags.StringVarP(&f.data, "data", "d", "", "Request body; @file reads it from a file")
	flags.StringVar(&f.timeout, "timeout", "", "Per-call timeout, 0 disables (e.g., 500ms, 10s) (env: PERSEPHONE_TIMEOUT in ms)")
	flags.StringVar(&f.baseURL, "base-url", "", "Base URL for relative request URLs (env: PERSEPHONE_BASE_URL)")
	flags.StringVar(&f.errorCodes, "error-codes", "", "Extra failing status codes, comma-separated (env: PERSEPHONE_ERROR_CODES)")
	flags.StringVar(&f.whitelist, "whitelist", "", "Status codes that never fail, comma-separated (env: PERSEPHONE_WHITELIST)")
	flags.StringArrayVar(&f.queries, "query", nil, "Print a value instead of the body: status, duration, header.<name> or a gjson body path (repeatable)")
	flags.StringVar(&f.schema, "schema", "", "Validate the body against a JSON Schema file")
	flags.StringVarP(&f.output, "output", "o", "", "Output format: console, json (env: PERSEPHONE_OUTPUT)")
	flags.StringVar(&f.locale, "locale", "", "Error message locale: en, pt-BR (env: PERSEPHONE_LOCALE)")
	flags.StringVar(&f.proxy, "proxy", "", "Proxy URL for HTTP requests (env: PERSEPHONE_PROXY)")
	flags.BoolVarP(&f.insecure, "insecure", "k", false, "Disable SSL certificate validation")
	flags.BoolVar(&f.http2, "http2", false, "Enable HTTP/2 (env: PERSEPHONE_HTTP2)")
	flags.StringVar(&f.configPath, "config", getEnvString("PERSEPHONE_CONFIG", ""), "Path to config file (env: PERSEPHONE_CONFIG)")
	flags.StringVar(&f.envFile, "env-file", "", "Path to .env file for variable interpolation (env: PERSEPHONE_ENV_FILE)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output (env: PERSEPHONE_VERBOSE)")
	flags.BoolVar(&f.noColor, "no-color", false, "Disable colored output (env: PERSEPHONE_NO_COLOR)")
}

// loadConfig layers defaults, the config file, PERSEPHONE_* variables and
// explicitly set flags, in that order.
func (f *requestFlags) loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err = cfg.ApplyEnv()
	if err != nil {
		return nil, err
	}

	override := &config.Config{}
	if flags.Changed("base-url") {
		override.BaseURL = f.baseURL
	}
	if flags.Changed("error-codes") {
		if override.AdditionalErrorCodes, err = config.ParseCodes(f.errorCodes); err != nil {
			return nil, fmt.Errorf("--error-codes: %w", err)
		}
	}
	if flags.Changed("whitelist") {
		if override.ErrorsWhitelist, err = config.ParseCodes(f.whitelist); err != nil {
			return nil, fmt.Errorf("--whitelist: %w", err)
		}
	}
	if flags.Changed("output") {
		override.Output = f.output
	}
	if flags.Changed("locale") {
		override.Locale = f.locale
	}
	if flags.Changed("proxy") {
		override.Proxy = f.proxy
	}
	if flags.Changed("env-file") {
		override.EnvFile = f.envFile
	}
	if flags.Changed("insecure") {
		override.ValidateSSL = config.BoolPtr(!f.insecure)
	}
	if flags.Changed("http2") {
		override.HTTP2 = config.BoolPtr(f.http2)
	}
	if flags.Changed("verbose") {
		override.Verbose = config.BoolPtr(f.verbose)
	}
	if flags.Changed("no-color") {
		override.NoColor = config.BoolPtr(f.noColor)
	}
	cfg = cfg.Merge(override)

	if flags.Changed("timeout") {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid timeout value %q", f.timeout)
		}
		cfg.Timeout = int(d.Milliseconds())
	}

	return cfg, nil
}

// callEnv is everything resolved from flags before a call is made.
type callEnv struct {
	cfg       *config.Config
	resolver  *env.Resolver
	logger    *log.Logger
	formatter output.Formatter
	headers   map[string]string
	body      string
}

func (f *requestFlags) prepare(cmd *cobra.Command) (*callEnv, error) {
	cfg, err := f.loadConfig(cmd.Flags())
	if err != nil {
		return nil, exitError(ExitConfigError, err)
	}

	ce := &callEnv{cfg: cfg, resolver: env.NewResolver()}

	if cfg.GetVerbose() {
		ce.logger = log.New(cmd.ErrOrStderr(), "persephone: ", log.LstdFlags|log.Lmicroseconds)
		ce.resolver.SetWarnFunc(ce.logger.Printf)
	}

	vars := env.LoadSystemEnv(VariablePrefix)
	if cfg.EnvFile != "" {
		fileVars, err := env.LoadAndExportDotEnv(cfg.EnvFile)
		if err != nil {
			return nil, exitError(ExitConfigError, err)
		}
		vars = env.MergeVariables(vars, fileVars)
	}
	ce.resolver.SetVariables(vars)

	ce.formatter, err = output.New(cfg.Output, cmd.OutOrStdout(), cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return nil, exitError(ExitConfigError, err)
	}

	headers, err := parseHeaderFlags(f.headers)
	if err != nil {
		return nil, exitError(ExitUsageError, err)
	}
	ce.headers = ce.resolver.ResolveAll(headers)

	body, err := readBody(f.data)
	if err != nil {
		return nil, exitError(ExitUsageError, err)
	}
	ce.body = ce.resolver.Resolve(body)

	return ce, nil
}

func (ce *callEnv) clientOptions(opts ...http.ClientOption) []http.ClientOption {
	all := ce.cfg.ClientOptions()
	if ce.logger != nil {
		all = append(all, http.WithLogger(ce.logger))
	}
	return append(all, opts...)
}

func (ce *callEnv) requestOptions() []http.RequestOption {
	opts := []http.RequestOption{http.WithHeaders(ce.headers)}
	if ce.body == "" {
		return opts
	}
	if json.Valid([]byte(ce.body)) {
		return append(opts, http.WithJSONBody(ce.body))
	}
	return append(opts, http.WithBody(ce.body))
}

// runCall performs one call and reports it. The returned error is an
// *ExitError when the exit status is not zero.
func (f *requestFlags) runCall(cmd *cobra.Command, method, rawURL string) error {
	cmd.SilenceUsage = true

	ce, err := f.prepare(cmd)
	if err != nil {
		return err
	}

	queries := make([]*capture.Capture, 0, len(f.queries))
	for _, q := range f.queries {
		c, err := capture.Parse(q)
		if err != nil {
			return exitError(ExitUsageError, err)
		}
		queries = append(queries, c)
	}

	var sent *http.Request
	client := http.NewClient(ce.clientOptions(http.WithObserver(http.ObserverFunc(
		func(req *http.Request, _ *http.Response, _ error) { sent = req },
	)))...)

	resp, callErr := client.Fetch(cmd.Context(), ce.resolver.Resolve(rawURL), method, ce.requestOptions()...)

	result := &output.Result{Request: sent, Response: resp, Err: callErr}
	if resp != nil {
		extractor := capture.NewExtractor(resp)
		for _, q := range queries {
			value, found := extractor.Extract(q)
			result.Queries = append(result.Queries, output.Query{Expr: q.Name, Value: value, Found: found})
		}
		if f.schema != "" && callErr == nil {
			schema := assertions.ValidateSchemaFile(resp, f.schema, "")
			result.Schema = &schema
		}
	}
	ce.formatter.FormatResult(result)

	code := exitCodeFor(callErr)
	if code == ExitSuccess && result.Schema != nil && !result.Schema.Passed {
		code = ExitSchemaMismatch
	}
	if code != ExitSuccess {
		return exitError(code, nil)
	}
	return nil
}

// exitCodeFor maps a settlement to the process exit status.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch http.KindOf(err) {
	case http.KindInvalidStatus, http.KindStatusZero:
		return ExitRejected
	case http.KindNetwork, http.KindTimeout, http.KindAbort:
		return ExitTransportError
	default:
		return ExitRejected
	}
}

// parseHeaderFlags reads "Name: value" pairs. "Name=value" is accepted too.
func parseHeaderFlags(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		key, value, found := strings.Cut(v, ":")
		if !found {
			key, value, found = strings.Cut(v, "=")
		}
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", v)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

// readBody returns data, or the contents of the named file when data starts
// with "@". "@-" reads standard input.
func readBody(data string) (string, error) {
	if !strings.HasPrefix(data, "@") {
		return data, nil
	}
	path := data[1:]
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(content), nil
}

// Environment variable helpers

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
