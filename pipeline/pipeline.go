// Package pipeline wires a source adapter to a cache store:
// check cache, on miss fetch, normalize, store, return.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/briangreenhill/almanac/cache"
)

// ErrInvalidParam is wrapped by adapters when a lookup parameter cannot be
// turned into a cache key.
var ErrInvalidParam = errors.New("invalid lookup parameter")

// Adapter knows one upstream source.
type Adapter[T any] interface {
	Name() string
	// Key validates param and derives the cache key. now is used for
	// defaults such as "today".
	Key(param string, now time.Time) (string, error)
	// FetchRaw retrieves the raw upstream body for key.
	FetchRaw(ctx context.Context, key string) ([]byte, error)
	// Normalize maps a raw body into sorted items.
	Normalize(ctx context.Context, key string, raw []byte) ([]T, error)
}

// Store is the cache the pipeline reads and writes.
type Store[T any] interface {
	cache.ReadWriter[T]
}

// Result is what a pipeline run produced.
type Result[T any] struct {
	Key       string
	Items     []T
	CreatedAt time.Time
	FetchID   uuid.UUID
	Hit       bool
}

type Pipeline[T any] struct {
	adapter Adapter[T]
	store   Store[T]
	group   singleflight.Group
	now     func() time.Time
}

type Option[T any] func(*Pipeline[T])

// WithClock overrides time.Now for key defaults and result timestamps.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(p *Pipeline[T]) { p.now = now }
}

func New[T any](adapter Adapter[T], store Store[T], opts ...Option[T]) *Pipeline[T] {
	p := &Pipeline[T]{
		adapter: adapter,
		store:   store,
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline[T]) Name() string { return p.adapter.Name() }

// Key derives the cache key for param.
func (p *Pipeline[T]) Key(param string) (string, error) {
	return p.adapter.Key(param, p.now())
}

// Get serves from the cache when the entry is valid, fetching otherwise.
// Fetch failures are returned as-is and leave the cache untouched.
func (p *Pipeline[T]) Get(ctx context.Context, param string) (Result[T], error) {
	key, err := p.Key(param)
	if err != nil {
		return Result[T]{}, err
	}

	log := zerolog.Ctx(ctx).With().Str("source", p.adapter.Name()).Str("key", key).Logger()

	if e, ok := p.store.Read(key); ok {
		log.Debug().Str("fetch_id", e.FetchID.String()).Msg("cache hit")
		return Result[T]{Key: key, Items: e.Items, CreatedAt: e.CreatedAt, FetchID: e.FetchID, Hit: true}, nil
	}

	return p.fetch(ctx, log, key, false)
}

// Refresh fetches key unconditionally and overwrites the cache on success.
func (p *Pipeline[T]) Refresh(ctx context.Context, param string) (Result[T], error) {
	key, err := p.Key(param)
	if err != nil {
		return Result[T]{}, err
	}
	log := zerolog.Ctx(ctx).With().Str("source", p.adapter.Name()).Str("key", key).Logger()
	return p.fetch(ctx, log, key, true)
}

// fetch runs FETCHING → NORMALIZING → STORING once per key at a time.
// Concurrent callers for the same key share the in-flight result.
func (p *Pipeline[T]) fetch(ctx context.Context, log zerolog.Logger, key string, force bool) (Result[T], error) {
	flight := key
	if force {
		flight = "refresh:" + key
	}

	v, err, shared := p.group.Do(flight, func() (any, error) {
		// A request that started while another flight was storing may now hit.
		if !force {
			if e, ok := p.store.Read(key); ok {
				return Result[T]{Key: key, Items: e.Items, CreatedAt: e.CreatedAt, FetchID: e.FetchID, Hit: true}, nil
			}
		}

		// Once started, the fetch is not cut short by a departing caller.
		fctx := context.WithoutCancel(ctx)
		fetchID := uuid.New()
		start := time.Now()

		raw, err := p.adapter.FetchRaw(fctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch %s %s: %w", p.adapter.Name(), key, err)
		}

		items, err := p.adapter.Normalize(fctx, key, raw)
		if err != nil {
			return nil, fmt.Errorf("normalize %s %s: %w", p.adapter.Name(), key, err)
		}

		stored := p.store.Put(key, items, fetchID)
		log.Info().
			Str("fetch_id", fetchID.String()).
			Int("items", len(items)).
			Bool("stored", stored).
			Dur("duration", time.Since(start)).
			Msg("fetched upstream")

		return Result[T]{Key: key, Items: items, CreatedAt: p.now(), FetchID: fetchID}, nil
	})
	if err != nil {
		log.Warn().Err(err).Bool("shared", shared).Msg("upstream fetch failed")
		return Result[T]{}, err
	}
	return v.(Result[T]), nil
}
