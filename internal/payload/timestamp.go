package payload

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted by NormalizeTimestamp. The contract is deliberately
// offset-only: a 'Z' suffix and fractional seconds are rejected. This
// is a compatibility boundary — broadening it changes which payloads
// the whole pipeline accepts.
var timestampLayouts = []string{
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05-0700",
}

// NormalizeTimestamp parses an ISO-8601 timestamp carrying an explicit
// numeric UTC offset and converts it to UTC. It is a pure function:
// calling it twice on the same string yields the same instant.
func NormalizeTimestamp(s string) (time.Time, error) {
	// time.Parse accepts an optional fractional-second field even when
	// the layout omits it. Accepted inputs never contain '.' or ',', so
	// reject them up front to keep fractional seconds out.
	if strings.ContainsAny(s, ".,") {
		return time.Time{}, &ValidationError{
			Field: "time_stamp",
			Msg:   fmt.Sprintf("%q carries fractional seconds, want whole seconds", s),
		}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{
		Field: "time_stamp",
		Msg:   fmt.Sprintf("%q does not match format YYYY-MM-DDThh:mm:ss±hh:mm", s),
	}
}
