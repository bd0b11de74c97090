package schedule

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the day-month-year format used throughout the printed
// paperwork.
const DateLayout = "02-01-2006"

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDates renders a chronological comma-joined date list.
func FormatDates(dates []time.Time) string {
	if len(dates) == 0 {
		return ""
	}
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = FormatDate(d)
	}
	return strings.Join(parts, ", ")
}

// NormalizeAndSortDates canonicalizes a free-text comma-separated date list:
// entries are trimmed, empties dropped, and the parseable dates sorted by
// calendar order. Entries that do not parse keep their positions rather than
// being rejected, so a hand-edited note never crashes a run. The function is
// idempotent.
func NormalizeAndSortDates(text string) string {
	var entries []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			entries = append(entries, part)
		}
	}

	// Sort the parseable dates among themselves; malformed entries keep
	// their positions.
	var dated []time.Time
	for _, e := range entries {
		if d, err := ParseDate(e); err == nil {
			dated = append(dated, d)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool { return dated[i].Before(dated[j]) })

	out := make([]string, len(entries))
	pos := 0
	for i, e := range entries {
		if _, err := ParseDate(e); err == nil {
			out[i] = FormatDate(dated[pos])
			pos++
		} else {
			out[i] = e
		}
	}
	return strings.Join(out, ", ")
}
