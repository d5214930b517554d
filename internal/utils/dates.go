package utils

import (
	"strings"
	"time"
)

// legacyDateLayouts are the formats seen across imported fight histories,
// most common first.
var legacyDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
	"02.01.2006",
	"2.1.2006",
	time.RFC3339,
	// Two-digit years are ambiguous across sources and stay unsupported;
	// unparsed text is kept verbatim on the record.
}

// ParseLegacyDate parses a free-text event date from a legacy record.
// Returns the date truncated to UTC midnight, or ok=false when no known
// layout applies.
func ParseLegacyDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
