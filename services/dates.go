package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ClockDate is a month/day/time tuple with no year attached. The news
// page's schedule table omits years entirely; callers infer them from
// the ordering of the event sequence.
type ClockDate struct {
	Month  int
	Day    int
	Hour   int
	Minute int
}

var weekdayAnnotation = regexp.MustCompile(`\(.*?\)`)

// ParseClockDate parses strings like "7/11(火) 10:00" or "7/11 10:00".
// The parenthesized weekday is ignored. Any missing or unparseable
// component comes back as zero; there is no calendar-range validation
// and no error — malformed input is the caller's data-quality problem.
func ParseClockDate(s string) ClockDate {
	cleaned := strings.TrimSpace(weekdayAnnotation.ReplaceAllString(s, ""))
	parts := strings.Fields(cleaned)

	var cd ClockDate
	if len(parts) > 0 {
		md := strings.SplitN(parts[0], "/", 2)
		cd.Month = atoiOrZero(md[0])
		if len(md) > 1 {
			cd.Day = atoiOrZero(md[1])
		}
	}
	if len(parts) > 1 {
		hm := strings.SplitN(parts[1], ":", 2)
		cd.Hour = atoiOrZero(hm[0])
		if len(hm) > 1 {
			cd.Minute = atoiOrZero(hm[1])
		}
	}
	return cd
}

// ParseBannerTime parses the ranking page's "last updated" banner value
// ("2025.07.11 10:00"). The banner carries no zone marker but represents
// the site's home time, so the target zone is an explicit parameter.
func ParseBannerTime(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006.01.02 15:04", strings.TrimSpace(s), loc)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
