package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/bench"
	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/abdul-hamid-achik/persephone/packages/metrics"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if result.Request != nil {
		fmt.Fprintf(f.writer, "%s %s\n", bold(result.Request.Method), result.Request.URL)
		if f.verbose {
			fmt.Fprintf(f.writer, "  Request-Id: %s\n", result.Request.ID)
		}
	}

	resp := result.Response
	var rejection *http.Error
	errors.As(result.Err, &rejection)

	switch {
	case rejection != nil:
		fmt.Fprintf(f.writer, "%s %s %s", red("✗"), red(string(rejection.Kind)), rejection.Message)
	case result.Err != nil:
		fmt.Fprintf(f.writer, "%s %v", red("✗"), result.Err)
	default:
		fmt.Fprintf(f.writer, "%s %s", green("✓"), green(statusLine(resp.StatusCode)))
	}
	if rejection != nil && rejection.Cause != nil && f.verbose {
		fmt.Fprintf(f.writer, " %s", yellow(fmt.Sprintf("(%v)", rejection.Cause)))
	}
	if resp != nil {
		if rejection != nil && resp.StatusCode != 0 {
			fmt.Fprintf(f.writer, " [%s]", statusLine(resp.StatusCode))
		}
		fmt.Fprintf(f.writer, " %s", cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
	}
	fmt.Fprintln(f.writer)

	if resp == nil {
		return
	}

	if f.verbose && len(resp.Headers) > 0 {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "  %s: %s\n", k, resp.Headers[k])
		}
	}

	if len(result.Queries) > 0 {
		for _, q := range result.Queries {
			if !q.Found {
				fmt.Fprintf(f.writer, "  %s = %s\n", q.Expr, yellow("<not found>"))
				continue
			}
			fmt.Fprintf(f.writer, "  %s = %s\n", q.Expr, formatQueryValue(q.Value))
		}
	} else if resp.Body != "" {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, prettyBody(resp))
	}

	if result.Schema != nil {
		if result.Schema.Passed {
			fmt.Fprintf(f.writer, "%s schema valid\n", green("✓"))
		} else {
			fmt.Fprintf(f.writer, "%s %s\n", red("✗"), result.Schema.Message)
		}
	}
}

func (f *ConsoleFormatter) FormatSummary(summary metrics.Summary, thresholds []bench.ThresholdResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, bold("BENCH SUMMARY"))
	fmt.Fprintln(f.writer, strings.Repeat("─", 40))
	fmt.Fprintf(f.writer, "Duration:   %s\n", formatDuration(summary.Duration))
	fmt.Fprintf(f.writer, "Total:      %s requests (%.1f req/s)\n", bold(formatNumber(summary.Total)), summary.RPS)
	fmt.Fprintf(f.writer, "Success:    %s (%.1f%%)\n", green(formatNumber(summary.Success)), summary.SuccessRate)

	failures := summary.FailureCount()
	if failures > 0 {
		fmt.Fprintf(f.writer, "Failed:     %s\n", red(formatNumber(failures)))
		kinds := make([]string, 0, len(summary.Failures))
		for k := range summary.Failures {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(f.writer, "  %-18s %s\n", k, formatNumber(summary.Failures[http.Kind(k)]))
		}
	} else {
		fmt.Fprintf(f.writer, "Failed:     0\n")
	}

	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, bold("LATENCY (ms)"))
	fmt.Fprintf(f.writer, "  p50: %-6s | p95: %-6s | p99: %-6s | max: %s\n",
		formatLatencyMs(summary.P50),
		formatLatencyMs(summary.P95),
		formatLatencyMs(summary.P99),
		formatLatencyMs(summary.Max))
	fmt.Fprintf(f.writer, "  min: %-6s | mean: %s\n",
		formatLatencyMs(summary.Min),
		formatLatencyMs(summary.Mean))

	if len(thresholds) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, bold("THRESHOLDS"))
		allPassed := true
		for _, tr := range thresholds {
			symbol := green("✓")
			if !tr.Passed {
				symbol = red("✗")
				allPassed = false
			}
			fmt.Fprintf(f.writer, "  %s %s %s    (actual: %s)\n", symbol, tr.Name, tr.Expected, tr.Actual)
		}
		fmt.Fprintln(f.writer)
		if allPassed {
			fmt.Fprintln(f.writer, green("All thresholds passed!"))
		} else {
			fmt.Fprintln(f.writer, red("Some thresholds failed!"))
		}
	}
	fmt.Fprintln(f.writer)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("persephone"), version)
}

func statusLine(code int) string {
	if text := nethttp.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}

func prettyBody(resp *http.Response) string {
	if resp.IsJSON() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(resp.Body), "", "  "); err == nil {
			return buf.String()
		}
	}
	return resp.Body
}

func formatQueryValue(v any) string {
	switch v.(type) {
	case []any, map[string]any:
		data, err := json.Marshal(v)
		if err == nil {
			return formatValue(string(data), 200)
		}
	}
	return formatValue(v, 200)
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// formatLatencyMs formats latency in milliseconds
func formatLatencyMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	if ms < 1 {
		return fmt.Sprintf("%.2f", ms)
	}
	if ms < 10 {
		return fmt.Sprintf("%.1f", ms)
	}
	return fmt.Sprintf("%.0f", ms)
}

// formatNumber formats a number with commas
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}

	result := make([]byte, 0, len(s)+(len(s)-1)/3)
	start := len(s) % 3
	if start == 0 {
		start = 3
	}

	result = append(result, s[:start]...)
	for i := start; i < len(s); i += 3 {
		result = append(result, ',')
		result = append(result, s[i:i+3]...)
	}
	return string(result)
}
