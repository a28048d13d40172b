package controllers

import (
	"strings"
	"testing"
)

func TestMapStatementHeader(t *testing.T) {
	header := []string{"Admission Number", "Student Name", "Paid In", "Receipt No", "Completion Time"}
	col := mapStatementHeader(header)

	expect := map[string]int{
		"admission_number": 0,
		"student_name":     1,
		"amount":           2,
		"reference":        3,
		"date":             4,
	}
	for key, idx := range expect {
		got, ok := col[key]
		if !ok {
			t.Fatalf("expected key %q in header map", key)
		}
		if got != idx {
			t.Fatalf("key %q: expected index %d, got %d", key, idx, got)
		}
	}
}

func TestMapStatementHeaderFirstWins(t *testing.T) {
	col := mapStatementHeader([]string{"Reference", "Ref"})
	if col["reference"] != 0 {
		t.Fatalf("expected first reference column to win, got index %d", col["reference"])
	}
}

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		wantNil bool
	}{
		{in: "2026-01-15", want: "2026-01-15"},
		{in: "2026-01-15 14:30:00", want: "2026-01-15"},
		{in: "15/01/2026", want: "2026-01-15"},
		{in: "", wantNil: true},
		{in: "not a date", wantNil: true},
	}

	for _, tc := range tests {
		got := parseStatementDate(tc.in)
		if tc.wantNil {
			if got != nil {
				t.Fatalf("parseStatementDate(%q): expected nil, got %v", tc.in, got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("parseStatementDate(%q): expected a date, got nil", tc.in)
		}
		if got.Format("2006-01-02") != tc.want {
			t.Fatalf("parseStatementDate(%q): expected %s, got %s", tc.in, tc.want, got.Format("2006-01-02"))
		}
	}
}

func TestReadCSVRows(t *testing.T) {
	input := "admission_number,amount,reference\nADM001,5000,SFK3X9QT21\nADM002,\"12,000\",TRF-0042\n"
	rows, err := readCSVRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2][1] != "12,000" {
		t.Fatalf("expected quoted amount preserved, got %q", rows[2][1])
	}
}
