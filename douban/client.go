package douban

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/almanac/internal/upstream"
	"github.com/briangreenhill/almanac/pipeline"
)

const (
	DefaultBaseURL = "https://m.douban.com/rexxar/api/v2"
	// The API rejects requests that do not look like they come from its
	// mobile site.
	DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	DefaultReferer   = "https://m.douban.com/subject_collection"
)

// Client is the weekly ranking source adapter.
type Client struct {
	fetcher    upstream.Fetcher
	baseURL    string
	userAgent  string
	referer    string
	imageProxy string
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

func WithHeaders(userAgent, referer string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
		if referer != "" {
			c.referer = referer
		}
	}
}

// WithImageProxy sets the host that replaces doubanio image hosts.
func WithImageProxy(proxy string) Option {
	return func(c *Client) { c.imageProxy = proxy }
}

func New(opts ...Option) *Client {
	c := &Client{
		fetcher:    upstream.New(),
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		referer:    DefaultReferer,
		imageProxy: DefaultImageProxy,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Name() string { return "douban" }

// Key resolves the category; the category name is the cache key.
func (c *Client) Key(param string, _ time.Time) (string, error) {
	cat, err := LookupCategory(param)
	if err != nil {
		return "", err
	}
	return cat.Name, nil
}

// URL returns the first page of a collection.
func (c *Client) URL(collection string) string {
	return fmt.Sprintf("%s/subject_collection/%s/items?start=0&count=10&items_only=1&for_mobile=1", c.baseURL, collection)
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.userAgent)
	h.Set("Referer", c.referer)
	return h
}

func (c *Client) FetchRaw(ctx context.Context, key string) ([]byte, error) {
	cat, err := LookupCategory(key)
	if err != nil {
		return nil, err
	}
	return c.fetcher.Fetch(ctx, c.URL(cat.Collection), c.header())
}

// Normalize maps the collection to items sorted by rank. A body that is not
// JSON fails with upstream.ErrSchema; a missing list or undecodable records
// degrade to an empty or partial list and are logged.
func (c *Client) Normalize(ctx context.Context, key string, raw []byte) ([]Item, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("douban %s: %w", key, upstream.ErrSchema)
	}
	log := zerolog.Ctx(ctx).With().Str("source", c.Name()).Str("key", key).Logger()

	var coll rawCollection
	if err := json.Unmarshal(raw, &coll); err != nil {
		log.Warn().Err(err).Msg("upstream body is not a subject collection")
		return nil, nil
	}

	items := make([]Item, 0, len(coll.Items))
	for i, rawItem := range coll.Items {
		var r RawItem
		if err := json.Unmarshal(rawItem, &r); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping undecodable item")
			continue
		}
		items = append(items, normalizeItem(r, i+1, c.imageProxy))
	}
	SortByRank(items)
	return items, nil
}

var _ pipeline.Adapter[Item] = (*Client)(nil)
