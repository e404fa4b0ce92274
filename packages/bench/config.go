package bench

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for a bench run
type Config struct {
	Requests    int           // total calls; zero means run for Duration
	Duration    time.Duration // wall-clock limit; zero means no limit
	Rate        float64       // calls per second; zero means unpaced
	Concurrency int           // max calls in flight
	Thresholds  Thresholds
}

// Thresholds defines pass/fail criteria for a bench run
type Thresholds struct {
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	MaxLatency time.Duration
	ErrorRate  float64 // 0.0 - 1.0
	MinRPS     float64
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Requests:    100,
		Concurrency: 10,
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Requests < 0 {
		return fmt.Errorf("requests cannot be negative")
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if c.Requests == 0 && c.Duration == 0 {
		return fmt.Errorf("either requests or duration must be set")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	return nil
}

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*([<>]=?)\s*(.+)$`)

// ParseThresholds parses a threshold string like "p95<200ms,errors<0.1%"
func ParseThresholds(s string) (Thresholds, error) {
	var t Thresholds
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := parseThresholdPart(part, &t); err != nil {
			return t, err
		}
	}
	return t, nil
}

func parseThresholdPart(part string, t *Thresholds) error {
	matches := thresholdPattern.FindStringSubmatch(part)
	if len(matches) != 4 {
		return fmt.Errorf("invalid threshold format: %s", part)
	}

	metric := strings.ToLower(matches[1])
	op := matches[2]
	valueStr := strings.TrimSpace(matches[3])
	upper := op == "<" || op == "<="

	var target *time.Duration
	switch metric {
	case "p50":
		target = &t.P50
	case "p95":
		target = &t.P95
	case "p99":
		target = &t.P99
	case "max", "maxlatency":
		target = &t.MaxLatency
	case "errors", "error", "errorrate":
		if !upper {
			return fmt.Errorf("error rate threshold must use < or <=")
		}
		percent := strings.HasSuffix(valueStr, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(valueStr, "%"), 64)
		if err != nil {
			return fmt.Errorf("invalid error rate: %s", valueStr)
		}
		if percent {
			f = f / 100
		}
		t.ErrorRate = f
		return nil
	case "rps", "rate":
		if upper {
			return fmt.Errorf("RPS threshold must use > or >=")
		}
		f, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return fmt.Errorf("invalid RPS: %s", valueStr)
		}
		t.MinRPS = f
		return nil
	default:
		return fmt.Errorf("unknown threshold metric: %s", metric)
	}

	if !upper {
		return fmt.Errorf("%s threshold must use < or <=", metric)
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %s", metric, valueStr)
	}
	*target = d
	return nil
}

// HasThresholds returns true if any thresholds are configured
func (t Thresholds) HasThresholds() bool {
	return t.P50 > 0 || t.P95 > 0 || t.P99 > 0 || t.MaxLatency > 0 || t.ErrorRate > 0 || t.MinRPS > 0
}

// ThresholdResult holds the result of evaluating a threshold
type ThresholdResult struct {
	Name     string
	Passed   bool
	Expected string
	Actual   string
}
