package geo

import "time"

// FormatInterval renders a catalog datetime filter from optional start and
// end dates. Dates are expanded to whole days in UTC. Open intervals use
// the ".." convention; with neither bound the filter is omitted entirely
// (empty string).
func FormatInterval(start, end *time.Time) string {
	switch {
	case start != nil && end != nil:
		return dayStart(*start) + "/" + dayEnd(*end)
	case start != nil:
		return dayStart(*start) + "/.."
	case end != nil:
		return "../" + dayEnd(*end)
	default:
		return ""
	}
}

func dayStart(t time.Time) string {
	return t.UTC().Format("2006-01-02") + "T00:00:00Z"
}

func dayEnd(t time.Time) string {
	return t.UTC().Format("2006-01-02") + "T23:59:59Z"
}
