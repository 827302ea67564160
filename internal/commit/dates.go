package commit

import "time"

// dateLayouts are the accepted transaction-date notations, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	time.RFC3339,
}

// ParseDate parses the transaction date from any accepted notation,
// falling back to now's date when nothing matches.
func ParseDate(raw string, now time.Time) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
