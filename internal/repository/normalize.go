package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	offsetLayouts = []string{time.RFC3339Nano, time.RFC3339}
	localLayouts  = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}
)

// toInt coerces a cell into an int, truncating fractions. Blank and
// non-numeric cells report ok=false.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// parseTimestamp reads the timestamp cell and returns it in UTC. Values without
// an offset are wall-clock time in loc, so a bare date is local midnight.
func parseTimestamp(v interface{}, loc *time.Location) (time.Time, bool) {
	raw := toString(v)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range offsetLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
