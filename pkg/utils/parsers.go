package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

var dateFormats = []string{"2006-01-02", "02.01.2006", "02.01"}

// ParseDate reads a travel date relative to now. Besides "today" and
// "tomorrow" it accepts yyyy-mm-dd, dd.mm.yyyy and dd.mm; a dd.mm date more
// than two days in the past rolls over to next year. The result is midnight
// in now's location.
func ParseDate(input string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(input))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	for _, f := range dateFormats {
		parsed, err := time.ParseInLocation(f, p, now.Location())
		if err != nil {
			continue
		}
		if f == "02.01" {
			parsed = parsed.AddDate(now.Year(), 0, 0)
			if parsed.Before(today.AddDate(0, 0, -2)) {
				parsed = parsed.AddDate(1, 0, 0)
			}
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q (expected yyyy-mm-dd)", ErrInvalidDate, input)
}

// ParseDayCount reads a non-negative number of days no larger than max.
// A max of zero means no upper bound.
func ParseDayCount(input string, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("invalid day count %q", input)
	}
	if n < 0 || (max > 0 && n > max) {
		return 0, fmt.Errorf("day count %d out of range", n)
	}
	return n, nil
}
