package visitor

import (
	"fmt"
	"testing"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{0, 5, "12:05 AM"},
		{12, 0, "12:00 PM"},
		{23, 59, "11:59 PM"},
		{13, 30, "1:30 PM"},
		{11, 59, "11:59 AM"},
		{1, 0, "1:00 AM"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.hour, tt.minute); got != tt.want {
			t.Errorf("FormatClock(%d, %d) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestFormatClockRange(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			got := FormatClock(h, m)
			hour, minute, ok := clock("2000-01-01T" + twoDigits(h) + ":" + twoDigits(m))
			if !ok || hour != h || minute != m {
				t.Fatalf("clock round trip failed for %02d:%02d", h, m)
			}
			var displayed int
			var suffix string
			if _, err := sscanClock(got, &displayed, &suffix); err != nil {
				t.Fatalf("FormatClock(%d, %d) = %q: %v", h, m, got, err)
			}
			if displayed < 1 || displayed > 12 {
				t.Fatalf("FormatClock(%d, %d) = %q, hour out of range", h, m, got)
			}
			if (h < 12) != (suffix == "AM") {
				t.Fatalf("FormatClock(%d, %d) = %q, wrong suffix", h, m, got)
			}
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-01T14:05:10.123456+01:00", "2:05 PM"},
		{"2024-03-01T00:30:00+00:00", "12:30 AM"},
		{"2024-03-01T12:00:00Z", "12:00 PM"},
		{"not a time", "not a time"},
		{"2024-03-01T1", "2024-03-01T1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatTime(tt.in); got != tt.want {
				t.Errorf("FormatTime(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func sscanClock(s string, hour *int, suffix *string) (int, error) {
	var minute int
	return fmt.Sscanf(s, "%d:%d %s", hour, &minute, suffix)
}
