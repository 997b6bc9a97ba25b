package history

import (
	"fmt"
	"strings"
)

// Page is a rendered day: the "M-D" date and its sorted events.
type Page struct {
	Date   string
	Events []Event
}

// PlainText renders one numbered line per event.
func (p Page) PlainText() string {
	if len(p.Events) == 0 {
		return fmt.Sprintf("No events recorded for %s.\n", p.Date)
	}
	var b strings.Builder
	for i, e := range p.Events {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, e.Year, e.Title)
	}
	return b.String()
}

// Markdown renders a headed numbered list with descriptions quoted.
func (p Page) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Today in History (%s)\n\n", p.Date)
	if len(p.Events) == 0 {
		b.WriteString("_No events recorded for this day._\n")
		return b.String()
	}
	for i, e := range p.Events {
		title := e.Title
		if e.Link != "" {
			title = fmt.Sprintf("[%s](%s)", e.Title, e.Link)
		}
		fmt.Fprintf(&b, "%d. **%s** %s\n", i+1, e.Year, title)
		if e.Description != "" {
			fmt.Fprintf(&b, "   > %s\n", e.Description)
		}
	}
	return b.String()
}

// Data is the event list as-is, never null.
func (p Page) Data() any {
	if p.Events == nil {
		return []Event{}
	}
	return p.Events
}
