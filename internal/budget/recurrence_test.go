package budget

import "testing"

func TestParseRecurrence(t *testing.T) {
	cases := []struct {
		in   string
		want Recurrence
	}{
		{"", Recurrence{}},
		{"weekly", Recurrence{Kind: RecurWeekly}},
		{"biweekly", Recurrence{Kind: RecurBiweekly}},
		{"monthly", Recurrence{Kind: RecurMonthly}},
		{"quarterly", Recurrence{Kind: RecurQuarterly}},
		{"annual", Recurrence{Kind: RecurAnnual}},
		{"every_6_days", Recurrence{Kind: RecurEveryNDays, N: 6}},
		{"every_2_weeks", Recurrence{Kind: RecurEveryNWeeks, N: 2}},
		// unknown and malformed rules fall back to monthly
		{"fortnightly", Recurrence{Kind: RecurMonthly}},
		{"every_0_days", Recurrence{Kind: RecurMonthly}},
		{"every_x_weeks", Recurrence{Kind: RecurMonthly}},
	}
	for _, tc := range cases {
		if got := ParseRecurrence(tc.in); got != tc.want {
			t.Errorf("ParseRecurrence(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestRecurrenceString(t *testing.T) {
	if got := (Recurrence{Kind: RecurEveryNDays, N: 6}).String(); got != "every_6_days" {
		t.Fatalf("got %q", got)
	}
	if got := (Recurrence{Kind: RecurBiweekly}).String(); got != "biweekly" {
		t.Fatalf("got %q", got)
	}
}

func TestAdvanceMonthEndClamp(t *testing.T) {
	monthly := Recurrence{Kind: RecurMonthly}
	got := monthly.Advance(MustDate("2024-01-31"))
	if got.String() != "2024-02-29" {
		t.Fatalf("Jan 31 + 1 month = %s, want 2024-02-29", got)
	}
	got = monthly.Advance(MustDate("2023-01-31"))
	if got.String() != "2023-02-28" {
		t.Fatalf("Jan 31 + 1 month = %s, want 2023-02-28", got)
	}
	quarterly := Recurrence{Kind: RecurQuarterly}
	if got := quarterly.Advance(MustDate("2024-01-31")); got.String() != "2024-04-30" {
		t.Fatalf("Jan 31 + 3 months = %s, want 2024-04-30", got)
	}
}

func TestAdvanceFixedPeriods(t *testing.T) {
	d := MustDate("2024-01-01")
	if got := (Recurrence{Kind: RecurWeekly}).Advance(d); got.String() != "2024-01-08" {
		t.Fatalf("weekly advance = %s", got)
	}
	if got := (Recurrence{Kind: RecurBiweekly}).Advance(d); got.String() != "2024-01-15" {
		t.Fatalf("biweekly advance = %s", got)
	}
	if got := (Recurrence{Kind: RecurEveryNDays, N: 6}).Advance(d); got.String() != "2024-01-07" {
		t.Fatalf("every_6_days advance = %s", got)
	}
	if got := (Recurrence{}).Advance(d); !got.Equal(d) {
		t.Fatalf("one-time advance moved the date to %s", got)
	}
}

func TestExpandOneTime(t *testing.T) {
	r := Recurrence{}
	in := r.Expand(MustDate("2024-01-10"), MustDate("2024-01-01"), MustDate("2024-01-28"))
	if len(in) != 1 || in[0].String() != "2024-01-10" {
		t.Fatalf("expected single occurrence on 2024-01-10, got %v", in)
	}
	out := r.Expand(MustDate("2024-02-10"), MustDate("2024-01-01"), MustDate("2024-01-28"))
	if len(out) != 0 {
		t.Fatalf("expected no occurrences outside window, got %v", out)
	}
}

func TestExpandRecurring(t *testing.T) {
	r := Recurrence{Kind: RecurWeekly}
	// anchor before the window: cursor advances into it
	got := r.Expand(MustDate("2023-12-25"), MustDate("2024-01-01"), MustDate("2024-01-21"))
	want := []string{"2024-01-01", "2024-01-08", "2024-01-15"}
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("occurrence %d = %s, want %s", i, got[i], want[i])
		}
	}
	// deterministic: same inputs, same output
	again := r.Expand(MustDate("2023-12-25"), MustDate("2024-01-01"), MustDate("2024-01-21"))
	for i := range got {
		if !got[i].Equal(again[i]) {
			t.Fatalf("expansion is not deterministic")
		}
	}
}
