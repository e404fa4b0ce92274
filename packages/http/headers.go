package http

import "strings"

// ParseHeaders parses a CRLF-delimited header blob as returned by
// xhr.Transport.AllResponseHeaders. Each line is split on the first ": ";
// lines without that delimiter are skipped.
func ParseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	lines := strings.Split(raw, "\r\n")
	if n := len(lines); lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for _, line := range lines {
		key, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		headers[key] = value
	}
	return headers
}
