package visitor

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatClock converts a 24-hour time to 12-hour format with an AM/PM suffix.
// Midnight and noon are both shown as 12.
func FormatClock(hour, minute int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, suffix)
}

// FormatTime formats the time portion of an ISO-like `dateTtime` string,
// e.g. "2024-03-01T14:05:10.1+01:00" becomes "2:05 PM". Input without a
// parsable time is returned unchanged.
func FormatTime(datetime string) string {
	hour, minute, ok := clock(datetime)
	if !ok {
		return datetime
	}
	return FormatClock(hour, minute)
}

func clock(datetime string) (int, int, bool) {
	_, t, ok := strings.Cut(datetime, "T")
	if !ok || len(t) < 5 || t[2] != ':' {
		return 0, 0, false
	}
	if !digits(t[:2]) || !digits(t[3:5]) {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(t[:2])
	minute, _ := strconv.Atoi(t[3:5])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
