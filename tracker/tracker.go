// Package tracker counts how often the site and game link groups are opened.
// Counters live in a single JSON blob under a fixed key of an injected Store,
// rewritten in full on every change.
package tracker

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// StorageKey is the key the counters are stored under.
const StorageKey = "web_opener_stats"

// Stats is the persisted counter state.
type Stats struct {
	SitesOpened int       `json:"sitesOpened"`
	GamesOpened int       `json:"gamesOpened"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Summary renders the counters the way the status line shows them.
func (s Stats) Summary() string {
	return fmt.Sprintf("Games opened: %d times | Sites opened: %d times", s.GamesOpened, s.SitesOpened)
}

// Store is a flat key-value store. Get returns nil, nil for a missing key.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// Options configures a Tracker.
type Options struct {
	Key    string           // defaults to StorageKey
	Now    func() time.Time // defaults to time.Now
	Logger *slog.Logger
}

// Tracker holds the counters in memory and writes them through to a Store.
// It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	key    string
	now    func() time.Time
	logger *slog.Logger
	stats  Stats
}

// New loads the counters from store. A missing key starts from zero; so does a
// corrupt value, which is logged and overwritten on the next change.
func New(store Store, options Options) (*Tracker, error) {
	if options.Key == "" {
		options.Key = StorageKey
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	t := &Tracker{
		store:  store,
		key:    options.Key,
		now:    options.Now,
		logger: options.Logger,
	}

	data, err := store.Get(t.key)
	if err != nil {
		return nil, fmt.Errorf("loading counters: %w", err)
	}
	t.stats = t.decode(data)
	return t, nil
}

func (t *Tracker) decode(data []byte) Stats {
	zero := Stats{LastUpdated: t.now()}
	if data == nil {
		return zero
	}

	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.logger.Warn("corrupt counters, starting from zero", "key", t.key, "error", err)
		return zero
	}
	if stats.SitesOpened < 0 || stats.GamesOpened < 0 {
		t.logger.Warn("negative counters, starting from zero", "key", t.key,
			"sitesOpened", stats.SitesOpened, "gamesOpened", stats.GamesOpened)
		return zero
	}
	return stats
}

// Stats returns a copy of the current counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// IncrementSites records one opening of the sites group.
func (t *Tracker) IncrementSites() (Stats, error) {
	return t.update(func(s *Stats) { s.SitesOpened++ })
}

// IncrementGames records one opening of the games group.
func (t *Tracker) IncrementGames() (Stats, error) {
	return t.update(func(s *Stats) { s.GamesOpened++ })
}

// Reset zeroes both counters.
func (t *Tracker) Reset() (Stats, error) {
	return t.update(func(s *Stats) { *s = Stats{} })
}

// update applies change to a copy and commits it only once the store accepted it.
func (t *Tracker) update(change func(*Stats)) (Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.stats
	change(&next)
	next.LastUpdated = t.now()

	data, err := json.Marshal(next)
	if err != nil {
		return t.stats, fmt.Errorf("encoding counters: %w", err)
	}
	if err := t.store.Put(t.key, data); err != nil {
		return t.stats, fmt.Errorf("saving counters: %w", err)
	}

	t.stats = next
	return next, nil
}
