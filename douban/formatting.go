package douban

import (
	"fmt"
	"strings"

	"github.com/briangreenhill/almanac/render"
)

// NoRating is shown instead of a score for unrated items.
const NoRating = "No rating"

// Page is a rendered ranking: its category and sorted items.
type Page struct {
	Category Category
	Items    []Item
}

func formatRating(r float64) string {
	if r <= 0 {
		return NoRating
	}
	return fmt.Sprintf("%.1f", r)
}

func formatGoodRate(g float64) string {
	if g <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", g)
}

// TrendGlyph renders the trend as an arrow, suffixed with the number of
// places moved when known.
func TrendGlyph(it Item) string {
	var glyph string
	switch it.Trend {
	case TrendUp:
		glyph = "↑"
	case TrendDown:
		glyph = "↓"
	default:
		return "-"
	}
	if it.RankChange != 0 {
		glyph += fmt.Sprintf("%d", it.RankChange)
	}
	return glyph
}

// PlainText renders one numbered line per item.
func (p Page) PlainText() string {
	if len(p.Items) == 0 {
		return fmt.Sprintf("No items in %s.\n", p.Category.Title)
	}
	var b strings.Builder
	for i, it := range p.Items {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, it.Title, formatRating(it.Rating))
		if it.Subtitle != "" {
			fmt.Fprintf(&b, " %s", it.Subtitle)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders a table with columns Rank | Title | Rating | Good Rate | Subtitle | Trend.
func (p Page) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", p.Category.Emoji, p.Category.Title)
	if len(p.Items) == 0 {
		b.WriteString("_No items in this ranking._\n")
		return b.String()
	}

	b.WriteString("| Rank | Title | Rating | Good Rate | Subtitle | Trend |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, it := range p.Items {
		title := render.EscapeCell(it.Title)
		if it.URL != "" {
			title = fmt.Sprintf("[%s](%s)", title, it.URL)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			it.Rank,
			title,
			formatRating(it.Rating),
			formatGoodRate(it.GoodRate),
			render.EscapeCell(it.Subtitle),
			TrendGlyph(it),
		)
	}
	return b.String()
}

// Data is the item list as-is, never null.
func (p Page) Data() any {
	if p.Items == nil {
		return []Item{}
	}
	return p.Items
}
