// ABOUTME: Lenient timestamp parsing for restored records
// ABOUTME: Accepts RFC3339, common date layouts, browser Date strings and epoch milliseconds

package time

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// maxEpochMillis is the last millisecond of year 9999; larger numbers are
// treated as corrupt
const maxEpochMillis = 253402300799999

// Layouts seen in persisted records. Browser Date.toString() output is
// handled separately because of its trailing zone name in parentheses.
var timeFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// ParseFlexibleTime attempts to parse a time string using various formats.
// A zero time is returned when nothing matches.
func ParseFlexibleTime(timeStr string) time.Time {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return time.Time{}
	}

	// "Mon Jan 02 2006 15:04:05 GMT-0700 (Central European Summer Time)"
	if i := strings.Index(timeStr, " ("); i > 0 {
		timeStr = timeStr[:i]
	}

	for _, format := range timeFormats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t
		}
	}

	if ms, err := strconv.ParseInt(timeStr, 10, 64); err == nil && ms > 0 && ms <= maxEpochMillis {
		return time.UnixMilli(ms).UTC()
	}

	return time.Time{}
}

// ParseWithDefault attempts to parse a time string, returning a default if parsing fails
func ParseWithDefault(timeStr string, defaultTime time.Time) time.Time {
	if parsed := ParseFlexibleTime(timeStr); !parsed.IsZero() {
		return parsed
	}
	return defaultTime
}

// ParseValue accepts a decoded JSON value: a string in any supported layout
// or a number of epoch milliseconds. Anything else yields defaultTime.
func ParseValue(v interface{}, defaultTime time.Time) time.Time {
	switch val := v.(type) {
	case string:
		return ParseWithDefault(val, defaultTime)
	case float64:
		if val > 0 && val <= maxEpochMillis && !math.IsNaN(val) {
			return time.UnixMilli(int64(val)).UTC()
		}
	}
	return defaultTime
}
