package douban

import (
	"encoding/json"

	"github.com/briangreenhill/almanac/internal/jsonx"
)

type Trend string

const (
	TrendUp    Trend = "up"
	TrendDown  Trend = "down"
	TrendEqual Trend = "equal"
)

// Item is one normalized entry of a weekly ranking.
type Item struct {
	Rank            int      `json:"rank"`
	Title           string   `json:"title"`
	ID              string   `json:"id"`
	Rating          float64  `json:"rating"` // 0 when upstream has no rating
	RatingCount     int      `json:"ratingCount"`
	GoodRate        float64  `json:"goodRate"` // percent, 0-100
	Trend           Trend    `json:"trend"`
	RankChange      int      `json:"rankChange"`
	Subtitle        string   `json:"subtitle"`
	Description     string   `json:"description"`
	CoverURL        string   `json:"coverUrl"`
	CoverURLProxied string   `json:"coverUrlProxied"`
	URL             string   `json:"url"`
	Tags            []string `json:"tags"`
}

// rawCollection is the response envelope; items are decoded one by one so
// a single malformed record does not drop the whole list.
type rawCollection struct {
	Items []json.RawMessage `json:"subject_collection_items"`
}

// RawItem matches one upstream ranking record. Optional objects are
// pointers; absent scalars fall back to their zero value.
type RawItem struct {
	ID               jsonx.Text   `json:"id"`
	Title            jsonx.Text   `json:"title"`
	RankValue        jsonx.Number `json:"rank_value"`
	RankValueChanged jsonx.Number `json:"rank_value_changed"`
	TrendUp          bool         `json:"trend_up"`
	TrendDown        bool         `json:"trend_down"`
	CardSubtitle     jsonx.Text   `json:"card_subtitle"`
	Description      jsonx.Text   `json:"description"`
	CoverURL         jsonx.Text   `json:"cover_url"`
	Cover            *rawImage    `json:"cover"`
	Pic              *rawPic      `json:"pic"`
	URL              jsonx.Text   `json:"url"`
	Rating           *rawRating   `json:"rating"`
	GoodRatingStats  jsonx.Number `json:"good_rating_stats"`
	Tags             []rawTag     `json:"tags"`
}

type rawImage struct {
	URL jsonx.Text `json:"url"`
}

type rawPic struct {
	Large  jsonx.Text `json:"large"`
	Normal jsonx.Text `json:"normal"`
}

type rawRating struct {
	Value jsonx.Number `json:"value"`
	Count jsonx.Number `json:"count"`
}

type rawTag struct {
	Name jsonx.Text `json:"name"`
}
