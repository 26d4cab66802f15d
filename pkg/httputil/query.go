package httputil

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

// QueryInt returns the integer value of key, or def when the parameter is
// missing or not a number.
func QueryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// QueryFloat returns the value of key as a finite float, or nil when the
// parameter is missing or malformed.
func QueryFloat(r *http.Request, key string) *float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// QueryList collects the values of key. Values may be repeated
// (?brands=a&brands=b) or comma separated (?brands=a,b). Blank entries are dropped.
func QueryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
