package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/almanac/internal/upstream"
	"github.com/briangreenhill/almanac/pipeline"
)

const DefaultBaseURL = "https://baike.baidu.com/cms/home/eventsOnHistory"

// Client is the "events on this day" source adapter.
type Client struct {
	fetcher upstream.Fetcher
	baseURL string
}

type Option func(*Client)

func WithFetcher(f upstream.Fetcher) Option {
	return func(c *Client) { c.fetcher = f }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw != "" {
			c.baseURL = strings.TrimRight(raw, "/")
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		fetcher: upstream.New(),
		baseURL: DefaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Name() string { return "history" }

// Key normalizes a date parameter to its "M-D" cache key.
func (c *Client) Key(param string, now time.Time) (string, error) {
	md, err := ParseDate(param, now)
	if err != nil {
		return "", err
	}
	return md.Key(), nil
}

// URL returns the upstream month file.
func (c *Client) URL(month time.Month) string {
	return fmt.Sprintf("%s/%02d.json", c.baseURL, int(month))
}

func (c *Client) FetchRaw(ctx context.Context, key string) ([]byte, error) {
	md, err := ParseDate(key, time.Time{})
	if err != nil {
		return nil, err
	}
	return c.fetcher.Fetch(ctx, c.URL(md.Month), nil)
}

// Normalize selects the day bucket and maps it to sorted events. A missing
// month or day bucket is an empty result. A body that is not JSON at all
// fails with upstream.ErrSchema; shape drift inside valid JSON degrades to
// an empty or partial list and is logged.
func (c *Client) Normalize(ctx context.Context, key string, raw []byte) ([]Event, error) {
	md, err := ParseDate(key, time.Time{})
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("history %s: %w", md.MonthCode(), upstream.ErrSchema)
	}
	log := zerolog.Ctx(ctx).With().Str("source", c.Name()).Str("key", key).Logger()

	var months map[string]json.RawMessage
	if err := json.Unmarshal(raw, &months); err != nil {
		log.Warn().Err(err).Msg("upstream body is not an object of months")
		return nil, nil
	}
	monthRaw, ok := months[md.MonthCode()]
	if !ok {
		return nil, nil
	}

	var days map[string]json.RawMessage
	if err := json.Unmarshal(monthRaw, &days); err != nil {
		log.Warn().Err(err).Str("month", md.MonthCode()).Msg("month entry is not an object of days")
		return nil, nil
	}
	dayRaw, ok := days[md.DayCode()]
	if !ok {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(dayRaw, &entries); err != nil {
		log.Warn().Err(err).Str("day", md.DayCode()).Msg("day entry is not a list")
		return nil, nil
	}

	events := make([]Event, 0, len(entries))
	for i, e := range entries {
		var re RawEvent
		if err := json.Unmarshal(e, &re); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping undecodable event")
			continue
		}
		events = append(events, normalizeEvent(re, md.Key()))
	}
	SortByYear(events)
	return events, nil
}

var _ pipeline.Adapter[Event] = (*Client)(nil)
