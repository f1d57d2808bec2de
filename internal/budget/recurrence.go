package budget

import (
	"strconv"
	"strings"
)

// RecurrenceKind enumerates the supported schedule shapes.
type RecurrenceKind string

const (
	// RecurNone marks a one-time commitment: no advancement ever happens.
	RecurNone      RecurrenceKind = ""
	RecurWeekly    RecurrenceKind = "weekly"
	RecurBiweekly  RecurrenceKind = "biweekly"
	RecurMonthly   RecurrenceKind = "monthly"
	RecurQuarterly RecurrenceKind = "quarterly"
	RecurAnnual    RecurrenceKind = "annual"
	// RecurEveryNDays and RecurEveryNWeeks are the parametric forms
	// ("every_6_days", "every_2_weeks"). N is carried alongside the kind.
	RecurEveryNDays  RecurrenceKind = "every_n_days"
	RecurEveryNWeeks RecurrenceKind = "every_n_weeks"
)

// Recurrence is a decoded schedule rule. Rules arrive as strings at the API
// boundary and are decoded exactly once; the engine never re-parses them.
type Recurrence struct {
	Kind RecurrenceKind
	N    int
}

// ParseRecurrence decodes a rule string. An empty string is the one-time
// case. A parametric rule with an unparseable or non-positive N, or any
// other unrecognized rule, falls back to monthly rather than failing.
func ParseRecurrence(s string) Recurrence {
	s = strings.TrimSpace(s)
	if s == "" {
		return Recurrence{}
	}
	switch s {
	case "weekly":
		return Recurrence{Kind: RecurWeekly}
	case "biweekly":
		return Recurrence{Kind: RecurBiweekly}
	case "monthly":
		return Recurrence{Kind: RecurMonthly}
	case "quarterly":
		return Recurrence{Kind: RecurQuarterly}
	case "annual":
		return Recurrence{Kind: RecurAnnual}
	}
	if rest, ok := strings.CutPrefix(s, "every_"); ok {
		if num, ok := strings.CutSuffix(rest, "_days"); ok {
			if n, err := strconv.Atoi(num); err == nil && n > 0 {
				return Recurrence{Kind: RecurEveryNDays, N: n}
			}
		}
		if num, ok := strings.CutSuffix(rest, "_weeks"); ok {
			if n, err := strconv.Atoi(num); err == nil && n > 0 {
				return Recurrence{Kind: RecurEveryNWeeks, N: n}
			}
		}
	}
	return Recurrence{Kind: RecurMonthly}
}

// IsNone reports the one-time case.
func (r Recurrence) IsNone() bool { return r.Kind == RecurNone }

// String renders the rule in its wire/storage form.
func (r Recurrence) String() string {
	switch r.Kind {
	case RecurEveryNDays:
		return "every_" + strconv.Itoa(r.N) + "_days"
	case RecurEveryNWeeks:
		return "every_" + strconv.Itoa(r.N) + "_weeks"
	default:
		return string(r.Kind)
	}
}

// Advance returns the next occurrence after d. Named monthly-family rules
// advance by calendar months (day clamped to month length), never by a fixed
// day count. Advancing a one-time rule returns d unchanged.
func (r Recurrence) Advance(d Date) Date {
	switch r.Kind {
	case RecurWeekly:
		return d.AddDays(7)
	case RecurBiweekly:
		return d.AddWeeks(2)
	case RecurMonthly:
		return d.AddMonths(1)
	case RecurQuarterly:
		return d.AddMonths(3)
	case RecurAnnual:
		return d.AddMonths(12)
	case RecurEveryNDays:
		return d.AddDays(r.N)
	case RecurEveryNWeeks:
		return d.AddWeeks(r.N)
	default:
		return d
	}
}

// Expand lists the occurrences of a commitment anchored at anchor that fall
// within [start, end], inclusive, in ascending order. For a one-time rule the
// result is the anchor itself if it falls in the window, else nothing. For a
// recurring rule the cursor starts at the anchor and advances until it
// reaches the window, then every occurrence up to end is emitted.
func (r Recurrence) Expand(anchor, start, end Date) []Date {
	if r.IsNone() {
		if !anchor.Before(start) && !anchor.After(end) {
			return []Date{anchor}
		}
		return nil
	}
	var out []Date
	cur := anchor
	for cur.Before(start) {
		cur = r.Advance(cur)
	}
	for !cur.After(end) {
		out = append(out, cur)
		cur = r.Advance(cur)
	}
	return out
}
