package env

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GeneratorFunc produces a placeholder value from literal arguments.
type GeneratorFunc func(args []string) (string, error)

var generators = map[string]GeneratorFunc{
	"uuid":         genUUID,
	"timestamp":    genTimestamp,
	"timestampMs":  genTimestampMs,
	"now":          genNow,
	"date":         genDate,
	"random":       genRandom,
	"randomString": genRandomString,
	"base64":       genBase64,
}

var callPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// callGenerator evaluates expressions like "random(1, 10)". ok is false when
// expr is not a call to a known generator.
func callGenerator(expr string) (value string, ok bool, err error) {
	matches := callPattern.FindStringSubmatch(expr)
	if matches == nil {
		return "", false, nil
	}
	fn, found := generators[matches[1]]
	if !found {
		return "", false, nil
	}
	value, err = fn(splitArgs(matches[2]))
	return value, true, err
}

// splitArgs splits on commas outside of single or double quotes and strips
// the quotes.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var (
		args    []string
		current strings.Builder
		quote   byte
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
		case quote != 0 && ch == quote:
			quote = 0
		case quote == 0 && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	return append(args, strings.TrimSpace(current.String()))
}

func genUUID(_ []string) (string, error) {
	return uuid.NewString(), nil
}

func genTimestamp(_ []string) (string, error) {
	return strconv.FormatInt(time.Now().Unix(), 10), nil
}

func genTimestampMs(_ []string) (string, error) {
	return strconv.FormatInt(time.Now().UnixMilli(), 10), nil
}

func genNow(_ []string) (string, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

func genDate(args []string) (string, error) {
	layout := time.DateOnly
	if len(args) > 0 && args[0] != "" {
		layout = args[0]
	}
	return time.Now().UTC().Format(layout), nil
}

func genRandom(args []string) (string, error) {
	lo, hi := 0, 100
	if len(args) >= 2 {
		var err error
		if lo, err = strconv.Atoi(args[0]); err != nil {
			return "", fmt.Errorf("random(): min %q is not an integer", args[0])
		}
		if hi, err = strconv.Atoi(args[1]); err != nil {
			return "", fmt.Errorf("random(): max %q is not an integer", args[1])
		}
	}
	if hi < lo {
		return "", fmt.Errorf("random(): max %d is below min %d", hi, lo)
	}
	return strconv.Itoa(lo + rand.Intn(hi-lo+1)), nil
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func genRandomString(args []string) (string, error) {
	length := 16
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return "", fmt.Errorf("randomString(): length %q is not a non-negative integer", args[0])
		}
		length = n
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[rand.Intn(len(alphanumeric))]
	}
	return string(b), nil
}

func genBase64(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(args, ","))), nil
}
