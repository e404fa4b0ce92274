package status

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCodes are the status codes treated as failures out of the box.
var DefaultCodes = []int{0, 400, 401, 403, 404, 405, 500, 502, 503}

// Registry is an ordered set of failure status codes. The zero value is an
// empty registry in which every status passes.
type Registry struct {
	codes []int
}

// Default returns a registry holding DefaultCodes.
func Default() Registry {
	return New(DefaultCodes...)
}

// New builds a registry from codes, dropping duplicates.
func New(codes ...int) Registry {
	return Registry{}.Extend(codes...)
}

// Extend returns the union of r and codes.
func (r Registry) Extend(codes ...int) Registry {
	merged := make([]int, 0, len(r.codes)+len(codes))
	merged = append(merged, r.codes...)
	for _, code := range codes {
		if !containsSorted(merged, code) {
			merged = insertSorted(merged, code)
		}
	}
	return Registry{codes: merged}
}

// Restrict returns r without codes.
func (r Registry) Restrict(codes ...int) Registry {
	kept := make([]int, 0, len(r.codes))
	for _, code := range r.codes {
		if !contains(codes, code) {
			kept = append(kept, code)
		}
	}
	return Registry{codes: kept}
}

// Contains reports whether code is a failure code.
func (r Registry) Contains(code int) bool {
	return containsSorted(r.codes, code)
}

// Codes returns a sorted copy of the failure codes.
func (r Registry) Codes() []int {
	out := make([]int, len(r.codes))
	copy(out, r.codes)
	return out
}

// Len returns the number of failure codes.
func (r Registry) Len() int {
	return len(r.codes)
}

func (r Registry) String() string {
	parts := make([]string, len(r.codes))
	for i, code := range r.codes {
		parts[i] = fmt.Sprintf("%d", code)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// IsPassing reports whether code is absent from registry.
func IsPassing(code int, registry Registry) bool {
	return !registry.Contains(code)
}

func insertSorted(codes []int, code int) []int {
	i := sort.SearchInts(codes, code)
	codes = append(codes, 0)
	copy(codes[i+1:], codes[i:])
	codes[i] = code
	return codes
}

func containsSorted(codes []int, code int) bool {
	i := sort.SearchInts(codes, code)
	return i < len(codes) && codes[i] == code
}

func contains(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
