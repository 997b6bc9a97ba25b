// Package app builds the content sources from configuration.
package app

import (
	"time"

	"github.com/briangreenhill/almanac/cache"
	"github.com/briangreenhill/almanac/douban"
	"github.com/briangreenhill/almanac/history"
	"github.com/briangreenhill/almanac/internal/config"
	"github.com/briangreenhill/almanac/internal/upstream"
	"github.com/briangreenhill/almanac/pipeline"
	"github.com/briangreenhill/almanac/plugins"
)

// Sources owns the per-source caches and the plugin registry built on them.
type Sources struct {
	Registry     *plugins.Registry
	HistoryCache *cache.Store[history.Event]
	DoubanCache  *cache.Store[douban.Item]
}

// New wires both sources. A nil fetcher uses an HTTP client with the
// configured upstream timeout.
func New(cfg *config.Config, fetcher upstream.Fetcher) *Sources {
	if fetcher == nil {
		fetcher = upstream.New(upstream.WithTimeout(cfg.UpstreamTimeout))
	}

	// "On this day" data does not change within a run.
	historyCache := cache.NewStore[history.Event](cache.Forever{}, time.Now)
	historyClient := history.New(
		history.WithFetcher(fetcher),
		history.WithBaseURL(cfg.History.BaseURL),
	)

	doubanCache := cache.NewStore[douban.Item](cache.TTL(cfg.Douban.TTL), time.Now)
	doubanClient := douban.New(
		douban.WithFetcher(fetcher),
		douban.WithBaseURL(cfg.Douban.BaseURL),
		douban.WithHeaders(cfg.Douban.UserAgent, cfg.Douban.Referer),
		douban.WithImageProxy(cfg.Douban.ImageProxy),
	)

	registry := plugins.NewRegistry()
	registry.Register(history.NewPlugin(pipeline.New[history.Event](historyClient, historyCache)))
	registry.Register(douban.NewPlugin(pipeline.New[douban.Item](doubanClient, doubanCache)))

	return &Sources{
		Registry:     registry,
		HistoryCache: historyCache,
		DoubanCache:  doubanCache,
	}
}

// CacheStats reports each source's validity policy and cached entries.
func (s *Sources) CacheStats() map[string]cache.Summary {
	return map[string]cache.Summary{
		"history": s.HistoryCache.Summary(),
		"douban":  s.DoubanCache.Summary(),
	}
}
