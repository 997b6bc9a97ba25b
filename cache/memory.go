package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is a mutex-guarded map from key to Entry. It is created once per
// source at startup and lives for the process; it holds no external
// resources and needs no teardown.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
	policy  Policy
	now     func() time.Time
}

var _ ReadWriter[struct{}] = (*Store[struct{}])(nil)

// NewStore creates an empty store. A nil now uses time.Now.
func NewStore[T any](policy Policy, now func() time.Time) *Store[T] {
	if policy == nil {
		policy = Forever{}
	}
	if now == nil {
		now = time.Now
	}
	return &Store[T]{
		entries: make(map[string]Entry[T]),
		policy:  policy,
		now:     now,
	}
}

func (s *Store[T]) Get(key string) (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Valid applies the store policy to e at the store's current time.
func (s *Store[T]) Valid(e Entry[T]) bool {
	return s.policy.Valid(Header{Key: e.Key, CreatedAt: e.CreatedAt}, s.now())
}

func (s *Store[T]) Read(key string) (Entry[T], bool) {
	e, ok := s.Get(key)
	if !ok || !s.Valid(e) {
		return Entry[T]{}, false
	}
	return e, true
}

// Put overwrites any previous entry for key. Empty item lists are declined
// so a transient empty upstream answer is re-fetched on the next request.
func (s *Store[T]) Put(key string, items []T, fetchID uuid.UUID) bool {
	if len(items) == 0 {
		return false
	}
	e := Entry[T]{
		Key:       key,
		Items:     items,
		CreatedAt: s.now(),
		FetchID:   fetchID,
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return true
}

// Summary is a store-level view for diagnostics: the validity policy and
// every entry.
type Summary struct {
	Policy  string `json:"policy"`
	Size    int    `json:"size"`
	Entries []Stat `json:"entries"`
}

// Summary reports the policy by its String form and lists all entries.
func (s *Store[T]) Summary() Summary {
	entries := s.Stats()
	return Summary{Policy: fmt.Sprint(s.policy), Size: len(entries), Entries: entries}
}

// Stat describes one entry for diagnostics.
type Stat struct {
	Key       string        `json:"key"`
	Items     int           `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	Age       time.Duration `json:"age_ns"`
	Valid     bool          `json:"valid"`
	FetchID   string        `json:"fetch_id"`
}

// Stats lists all entries sorted by key.
func (s *Store[T]) Stats() []Stat {
	now := s.now()

	s.mu.RLock()
	out := make([]Stat, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, Stat{
			Key:       e.Key,
			Items:     len(e.Items),
			CreatedAt: e.CreatedAt,
			Age:       e.Age(now),
			Valid:     s.policy.Valid(Header{Key: e.Key, CreatedAt: e.CreatedAt}, now),
			FetchID:   e.FetchID.String(),
		})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
