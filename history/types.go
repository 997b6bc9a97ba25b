package history

import "github.com/briangreenhill/almanac/internal/jsonx"

type EventType string

const (
	Birth EventType = "birth"
	Death EventType = "death"
	Other EventType = "event"
)

// Event is one normalized "on this day" record.
type Event struct {
	Title       string    `json:"title"`
	Year        string    `json:"year"`
	Date        string    `json:"date"` // "M-D"
	Description string    `json:"description"`
	EventType   EventType `json:"eventType"`
	Link        string    `json:"link"`
}

// RawEvent matches one entry of the upstream month file. Scalars are lenient:
// year arrives as either string or number.
type RawEvent struct {
	Title jsonx.Text `json:"title"`
	Year  jsonx.Text `json:"year"`
	Desc  jsonx.Text `json:"desc"`
	Type  jsonx.Text `json:"type"`
	Link  jsonx.Text `json:"link"`
}
