package budget

import (
	"encoding/json"
	"testing"
)

func TestAddMonthsClamp(t *testing.T) {
	cases := []struct {
		start string
		n     int
		want  string
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-31", 1, "2024-04-30"},
		{"2024-01-15", 1, "2024-02-15"},
		{"2024-11-30", 3, "2025-02-28"},
		{"2024-02-29", 12, "2025-02-28"},
	}
	for _, tc := range cases {
		if got := MustDate(tc.start).AddMonths(tc.n); got.String() != tc.want {
			t.Errorf("%s + %d months = %s, want %s", tc.start, tc.n, got, tc.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	a := MustDate("2024-01-01")
	if got := a.DaysUntil(MustDate("2024-01-29")); got != 28 {
		t.Fatalf("got %d, want 28", got)
	}
	if got := a.DaysUntil(MustDate("2023-12-31")); got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
	if got := a.DaysUntil(a); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(MustDate("2024-06-09"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-06-09"` {
		t.Fatalf("marshal = %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2024-06-09"`), &d); err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-06-09" {
		t.Fatalf("unmarshal = %s", d)
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.IsZero() {
		t.Fatalf("null should decode to the zero date")
	}
}
