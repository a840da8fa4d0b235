package datekey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedKey reports a string that is not a valid M.D.YY key.
var ErrMalformedKey = errors.New("malformed date key")

// Key identifies a calendar day in the 2000-2099 range.
type Key struct {
	Month int
	Day   int
	Year2 int
}

// Format renders t as an M.D.YY key in t's own location.
func Format(t time.Time) string {
	return FromTime(t).String()
}

// FromTime returns the key for the calendar day of t in t's location.
func FromTime(t time.Time) Key {
	return Key{
		Month: int(t.Month()),
		Day:   t.Day(),
		Year2: t.Year() % 100,
	}
}

// Parse decodes an M.D.YY key. The day must exist in the given month, so
// "2.29.23" fails while "2.29.24" succeeds. Only the canonical form is
// accepted: month and day without leading zeros and exactly two year digits,
// so "03.9.05" and "3.9.5" fail and every accepted key formats back to s.
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("%w: %q: expected 3 components, got %d", ErrMalformedKey, s, len(parts))
	}
	nums := make([]int, 3)
	for i, part := range parts {
		if part == "" || !isDigits(part) {
			return Key{}, fmt.Errorf("%w: %q: component %d is not numeric", ErrMalformedKey, s, i+1)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Key{}, fmt.Errorf("%w: %q: %v", ErrMalformedKey, s, err)
		}
		nums[i] = n
	}
	key := Key{Month: nums[0], Day: nums[1], Year2: nums[2]}
	if key.Month < 1 || key.Month > 12 {
		return Key{}, fmt.Errorf("%w: %q: month %d out of range", ErrMalformedKey, s, key.Month)
	}
	if key.Year2 < 0 || key.Year2 > 99 {
		return Key{}, fmt.Errorf("%w: %q: year %d out of range", ErrMalformedKey, s, key.Year2)
	}
	if key.Day < 1 || key.Day > daysIn(key.Month, key.Year()) {
		return Key{}, fmt.Errorf("%w: %q: day %d invalid for month %d", ErrMalformedKey, s, key.Day, key.Month)
	}
	if canonical := key.String(); canonical != s {
		return Key{}, fmt.Errorf("%w: %q: not in canonical form %q", ErrMalformedKey, s, canonical)
	}
	return key, nil
}

// MustParse is Parse for constants in tests and fixtures.
func MustParse(s string) Key {
	key, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return key
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func daysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Year returns the full four-digit year.
func (k Key) Year() int {
	return 2000 + k.Year2
}

// String renders the key in M.D.YY form.
func (k Key) String() string {
	return fmt.Sprintf("%d.%d.%02d", k.Month, k.Day, k.Year2)
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k == Key{}
}

// Time returns midnight of the key's day in loc. A nil loc means time.Local.
func (k Key) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(k.Year(), time.Month(k.Month), k.Day, 0, 0, 0, 0, loc)
}

// AddDays shifts the key by n calendar days.
func (k Key) AddDays(n int) Key {
	return FromTime(k.Time(time.UTC).AddDate(0, 0, n))
}

// Compare orders keys chronologically: -1 when k is earlier, 1 when later.
func (k Key) Compare(other Key) int {
	switch {
	case k.Year2 != other.Year2:
		return sign(k.Year2 - other.Year2)
	case k.Month != other.Month:
		return sign(k.Month - other.Month)
	default:
		return sign(k.Day - other.Day)
	}
}

// Before reports whether k is chronologically earlier than other.
func (k Key) Before(other Key) bool {
	return k.Compare(other) < 0
}

// Equal reports whether both keys name the same day.
func (k Key) Equal(other Key) bool {
	return k == other
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
