package cache

import (
	"fmt"
	"time"
)

// MonthDayKey builds the calendar key "M-D" (no zero padding). Every year's
// copy of a date maps to the same key.
func MonthDayKey(month time.Month, day int) string {
	return fmt.Sprintf("%d-%d", int(month), day)
}
