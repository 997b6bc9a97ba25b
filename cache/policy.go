package cache

import (
	"fmt"
	"time"
)

// Forever accepts any present entry. Used for data that does not change
// within a process lifetime.
type Forever struct{}

func (Forever) Valid(Header, time.Time) bool { return true }

func (Forever) String() string { return "forever" }

// TTL accepts entries younger than the duration.
type TTL time.Duration

func (t TTL) Valid(h Header, now time.Time) bool {
	return now.Sub(h.CreatedAt) < time.Duration(t)
}

func (t TTL) String() string { return fmt.Sprintf("ttl=%s", time.Duration(t)) }
