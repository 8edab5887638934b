package http

import (
	"testing"

	"fintrack/internal/core"
)

func TestFormatAmount(t *testing.T) {
	if got := formatAmount(core.RawAmount("12,5")); got != "R$ 12,50" {
		t.Errorf("got %q", got)
	}
	if got := formatAmount(core.RawAmount("n/a")); got != "n/a" {
		t.Errorf("unparseable amounts are shown as stored, got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate("2024-03-01"); got != "01/03/2024" {
		t.Errorf("got %q", got)
	}
	if got := formatDate("ontem"); got != "ontem" {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  normal text  ", "normal text"},
		{"text\x00with\x01control\x02chars", "textwithcontrolchars"},
		{"text\twith\ttabs", "text\twith\ttabs"},
		{"line1\nline2", "line1\nline2"},
		{"Açaí & café", "Açaí & café"},
		{"  Tesouro \x00 ", "Tesouro"},
		{"\x01 padded\x02", "padded"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.input); got != tt.expected {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
