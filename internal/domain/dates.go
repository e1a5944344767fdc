package domain

import "time"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// DaysBetween returns the signed whole days from a to b. Either value
// failing to parse yields an error; callers decide whether that skips
// the computation or zeroes it.
func DaysBetween(a, b string) (int, error) {
	from, err := ParseDate(a)
	if err != nil {
		return 0, err
	}
	to, err := ParseDate(b)
	if err != nil {
		return 0, err
	}
	return int(to.Sub(from).Hours() / 24), nil
}
