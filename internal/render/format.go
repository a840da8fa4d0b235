package render

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"newzyx/internal/datekey"
)

const (
	displayLayout     = "January 2, 2006"
	longDisplayLayout = "Monday, January 2, 2006"
	updatedLayout     = "Jan 2, 2006 at 3:04 PM"
)

var upper = cases.Upper(language.English)

// DisplayDate renders an M.D.YY id as "March 9, 2025". Ids that do not parse
// are returned unchanged.
func DisplayDate(id string) string {
	key, err := datekey.Parse(id)
	if err != nil {
		return id
	}
	return key.Time(time.UTC).Format(displayLayout)
}

// LongDisplayDate renders an id with its weekday, "Sunday, March 9, 2025".
func LongDisplayDate(id string) string {
	key, err := datekey.Parse(id)
	if err != nil {
		return id
	}
	return key.Time(time.UTC).Format(longDisplayLayout)
}

// MonthBadge returns the short upper-case month, "MAR".
func MonthBadge(id string) string {
	key, err := datekey.Parse(id)
	if err != nil {
		return ""
	}
	return upper.String(time.Month(key.Month).String()[:3])
}

// DayBadge returns the day of month as written in the id.
func DayBadge(id string) string {
	key, err := datekey.Parse(id)
	if err != nil {
		return ""
	}
	return strconv.Itoa(key.Day)
}

// Clock renders seconds as m:ss. Negative and non-finite values read 0:00.
func Clock(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// UpdatedLabel renders a Last-Modified time in loc, or "" when unknown.
func UpdatedLabel(modified *time.Time, loc *time.Location) string {
	if modified == nil || modified.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return "Updated: " + modified.In(loc).Format(updatedLayout)
}

// SummaryFailure is shown in place of the summary when the fetch fails.
func SummaryFailure(err error) string {
	return fmt.Sprintf("Could not load news summary for this date.\n\nError: %s\n\nThis episode may not be available yet.", err.Error())
}

// Progress renders "m:ss / m:ss", leaving the total as --:-- when unknown.
func Progress(position, duration float64) string {
	if duration <= 0 || math.IsNaN(duration) {
		return Clock(position) + " / --:--"
	}
	return Clock(position) + " / " + Clock(duration)
}
