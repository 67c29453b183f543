package tui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello w…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"héllo wörld", 7, "héllo …"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.maxLen); got != tt.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		created time.Time
		want    string
	}{
		{time.Time{}, "N/A"},
		{now.Add(-30 * time.Second), "0m"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-3*time.Hour - 20*time.Minute), "3h 20m"},
		{now.Add(-1*24*time.Hour - 5*time.Hour), "1d 5h"},
	}
	for _, tt := range tests {
		if got := FormatUptime(tt.created, now); got != tt.want {
			t.Fatalf("FormatUptime(%v) = %q, want %q", tt.created, got, tt.want)
		}
	}
}

func TestPadAndAlign(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Fatalf("padRight = %q", got)
	}
	if got := rightAlign("ab", 5); got != "   ab" {
		t.Fatalf("rightAlign = %q", got)
	}
	if got := rightAlign("abcdef", 5); got != "abcdef" {
		t.Fatalf("rightAlign overflow = %q", got)
	}
}
