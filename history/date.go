package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/briangreenhill/almanac/cache"
	"github.com/briangreenhill/almanac/pipeline"
)

// Location is the reference timezone used to decide what "today" is.
var Location = time.FixedZone("CST", 8*60*60)

// MonthDay is a calendar day independent of year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// Key is the cache key, e.g. "3-14".
func (md MonthDay) Key() string { return cache.MonthDayKey(md.Month, md.Day) }

// MonthCode is the upstream file and top-level key, e.g. "03".
func (md MonthDay) MonthCode() string { return fmt.Sprintf("%02d", int(md.Month)) }

// DayCode is the upstream bucket key, e.g. "0314".
func (md MonthDay) DayCode() string { return fmt.Sprintf("%02d%02d", int(md.Month), md.Day) }

// ParseDate reads an optional date parameter. Empty means now. Accepted:
// RFC 3339 timestamps, YYYY-MM-DD, YYYY/MM/DD, MM-DD, M-D, MMDD, YYYYMMDD.
func ParseDate(s string, now time.Time) (MonthDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		now = now.In(Location)
		return MonthDay{Month: now.Month(), Day: now.Day()}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(Location)
		return MonthDay{Month: t.Month(), Day: t.Day()}, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' || r == '.' })
	var ms, ds string
	switch {
	case len(parts) == 3:
		if _, err := strconv.Atoi(parts[0]); err != nil {
			return MonthDay{}, invalidDate(s)
		}
		ms, ds = parts[1], parts[2]
	case len(parts) == 2:
		ms, ds = parts[0], parts[1]
	case len(parts) == 1 && len(s) == 4:
		ms, ds = s[:2], s[2:]
	case len(parts) == 1 && len(s) == 8:
		if _, err := strconv.Atoi(s[:4]); err != nil {
			return MonthDay{}, invalidDate(s)
		}
		ms, ds = s[4:6], s[6:]
	default:
		return MonthDay{}, invalidDate(s)
	}

	m, err := strconv.Atoi(ms)
	if err != nil {
		return MonthDay{}, invalidDate(s)
	}
	d, err := strconv.Atoi(ds)
	if err != nil {
		return MonthDay{}, invalidDate(s)
	}
	if m < 1 || m > 12 || d < 1 || d > daysIn(time.Month(m)) {
		return MonthDay{}, invalidDate(s)
	}
	return MonthDay{Month: time.Month(m), Day: d}, nil
}

// daysIn uses a leap year so 2-29 is always a valid day.
func daysIn(m time.Month) int {
	return time.Date(2024, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func invalidDate(s string) error {
	return fmt.Errorf("date %q: %w", s, pipeline.ErrInvalidParam)
}
