package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/persephone/packages/assertions"
	"github.com/abdul-hamid-achik/persephone/packages/bench"
	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/abdul-hamid-achik/persephone/packages/metrics"
)

// Result is everything the CLI knows about one settled call.
type Result struct {
	Request  *http.Request
	Response *http.Response
	Err      error
	Queries  []Query
	Schema   *assertions.Result
}

// Query is one --query expression and what it produced.
type Query struct {
	Expr  string
	Value any
	Found bool
}

type Formatter interface {
	FormatHeader(version string)
	FormatResult(result *Result)
	FormatSummary(summary metrics.Summary, thresholds []bench.ThresholdResult)
	FormatError(err error)
}

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns the formatter registered under name.
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch name {
	case "", FormatConsole:
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s (use console or json)", name)
	}
}
