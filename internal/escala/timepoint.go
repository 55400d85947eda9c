package escala

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var nonDigitRe = regexp.MustCompile(`[^0-9]`)

// NormalizeToken converts a loosely written time token ("8H", "800", "0800",
// "08:00") into canonical "HH:MM" form. One or two digits are read as a whole
// hour, three digits as H:MM, four or more as HH:MM with extra digits
// ignored. Hour values are not range-checked; malformed input flows through
// mechanically. The empty token reports ok=false.
func NormalizeToken(raw string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return "", false
	}

	var hour, minute int
	switch {
	case len(digits) <= 2:
		hour, _ = strconv.Atoi(digits)
	case len(digits) == 3:
		hour, _ = strconv.Atoi(digits[:1])
		minute, _ = strconv.Atoi(digits[1:3])
	default:
		hour, _ = strconv.Atoi(digits[:2])
		minute, _ = strconv.Atoi(digits[2:4])
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// toHHMM renders a time string in the compact 4-digit form used for period
// boundaries ("08:00" -> "0800").
func toHHMM(s string) string {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}

// clockMinutes converts "HH:MM" into minutes since midnight.
func clockMinutes(clock string) int {
	parts := strings.SplitN(clock, ":", 2)
	hour, _ := strconv.Atoi(parts[0])
	minute := 0
	if len(parts) == 2 {
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour*60 + minute
}

// minutesClock renders minutes since midnight back to "HH:MM", wrapping
// values outside a single day.
func minutesClock(total int) string {
	total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// spanMinutes returns the duration between two clock times, adding a day
// when the end does not follow the start (overnight span).
func spanMinutes(start, end string) int {
	s := clockMinutes(start)
	e := clockMinutes(end)
	if e <= s {
		e += minutesPerDay
	}
	return e - s
}
