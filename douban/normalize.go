package douban

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// DefaultImageProxy replaces doubanio image hosts, which refuse hotlinking.
const DefaultImageProxy = "https://doubanio.viki.moe"

var imageHostPattern = regexp.MustCompile(`^https?://img\d*\.doubanio\.com`)

// ProxyCover rewrites a doubanio image host to proxy. Other URLs are
// returned unchanged.
func ProxyCover(u, proxy string) string {
	if proxy == "" {
		return u
	}
	return imageHostPattern.ReplaceAllLiteralString(u, strings.TrimRight(proxy, "/"))
}

func trendOf(up, down bool) Trend {
	switch {
	case up:
		return TrendUp
	case down:
		return TrendDown
	default:
		return TrendEqual
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// cleanTags drops empty names and repeats, keeping first-seen order.
func cleanTags(raw []rawTag) []string {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, t := range raw {
		name := strings.TrimSpace(t.Name.String())
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	return tags
}

func coverOf(r RawItem) string {
	switch {
	case r.CoverURL != "":
		return r.CoverURL.String()
	case r.Cover != nil && r.Cover.URL != "":
		return r.Cover.URL.String()
	case r.Pic != nil && r.Pic.Large != "":
		return r.Pic.Large.String()
	case r.Pic != nil:
		return r.Pic.Normal.String()
	}
	return ""
}

// normalizeItem maps one raw record. position is the 1-based upstream
// position, used when the record carries no rank.
func normalizeItem(r RawItem, position int, proxy string) Item {
	rank := r.RankValue.Int()
	if rank <= 0 {
		rank = position
	}

	var rating float64
	var count int
	if r.Rating != nil {
		rating = max(r.Rating.Value.Float(), 0)
		count = max(r.Rating.Count.Int(), 0)
	}

	trend := trendOf(r.TrendUp, r.TrendDown)
	change := 0
	if trend != TrendEqual {
		change = abs(r.RankValueChanged.Int())
	}

	cover := strings.TrimSpace(coverOf(r))
	return Item{
		Rank:            rank,
		Title:           strings.TrimSpace(r.Title.String()),
		ID:              strings.TrimSpace(r.ID.String()),
		Rating:          rating,
		RatingCount:     count,
		GoodRate:        r.GoodRatingStats.Float(),
		Trend:           trend,
		RankChange:      change,
		Subtitle:        strings.TrimSpace(r.CardSubtitle.String()),
		Description:     strings.TrimSpace(r.Description.String()),
		CoverURL:        cover,
		CoverURLProxied: ProxyCover(cover, proxy),
		URL:             strings.TrimSpace(r.URL.String()),
		Tags:            cleanTags(r.Tags),
	}
}

// SortByRank orders items by ascending rank, stable among equal ranks.
func SortByRank(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return cmp.Compare(a.Rank, b.Rank)
	})
}
