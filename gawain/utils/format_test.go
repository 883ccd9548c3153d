package utils

import "testing"

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		-1234567: "-1,234,567",
		100000:   "100,000",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Sword of Dawn", 5); got != "Swor…" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("Axe", 10); got != "Axe" {
		t.Errorf("Truncate() = %q", got)
	}
}
