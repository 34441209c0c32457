package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/webradar/webradar/pkg/content"
	"github.com/webradar/webradar/pkg/logging"
)

// StoreConfig controls the in-memory discovery store
type StoreConfig struct {
	// DisplayCap bounds how many discoveries Display surfaces. The
	// backing list itself is unbounded and persisted in full.
	DisplayCap int `json:"display_cap"`

	// DedupCap bounds each dedup set; the oldest entries are evicted
	// first, so very old quotes can eventually reappear
	DedupCap int `json:"dedup_cap"`

	// PersistTimeout bounds each background save
	PersistTimeout time.Duration `json:"persist_timeout"`
}

// DefaultStoreConfig returns store settings tuned for interactive
// sessions
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		DisplayCap:     25,
		DedupCap:       500,
		PersistTimeout: 10 * time.Second,
	}
}

// dedupSet is a bounded set with insertion-order eviction
type dedupSet struct {
	members map[string]struct{}
	order   []string
	cap     int
}

func newDedupSet(cap int) *dedupSet {
	return &dedupSet{members: make(map[string]struct{}), cap: cap}
}

func (s *dedupSet) has(key string) bool {
	_, ok := s.members[key]
	return ok
}

func (s *dedupSet) add(key string) {
	if s.has(key) {
		return
	}
	if len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.members, oldest)
	}
	s.members[key] = struct{}{}
	s.order = append(s.order, key)
}

// Store holds the session's discoveries, newest first, rejecting
// repeat quotes and revisited domains. Persistence runs in the
// background so a slow disk never stalls the crawl loop.
type Store struct {
	mu          sync.Mutex
	discoveries []*content.Discovery
	seenQuotes  *dedupSet
	seenDomains *dedupSet
	backend     Backend
	config      StoreConfig

	// seq orders snapshots so a stale background save can never
	// overwrite a newer one
	seq       uint64
	saveMu    sync.Mutex
	persistWG sync.WaitGroup
}

// NewStore creates a discovery store over the given backend. A nil
// backend keeps everything in memory only.
func NewStore(backend Backend, config StoreConfig) *Store {
	if config.DisplayCap <= 0 {
		config.DisplayCap = DefaultStoreConfig().DisplayCap
	}
	if config.DedupCap <= 0 {
		config.DedupCap = DefaultStoreConfig().DedupCap
	}
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = DefaultStoreConfig().PersistTimeout
	}
	return &Store{
		seenQuotes:  newDedupSet(config.DedupCap),
		seenDomains: newDedupSet(config.DedupCap),
		backend:     backend,
		config:      config,
	}
}

// Hydrate loads persisted discoveries and seeds the dedup sets so a
// restarted session does not resurface old quotes
func (s *Store) Hydrate(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	loaded, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range loaded {
		s.discoveries = append(s.discoveries, d)
		s.seenQuotes.add(quoteKey(d.Quote))
		s.seenDomains.add(strings.ToLower(d.Domain))
	}
	return nil
}

// Commit adds a discovery unless its quote or domain was already
// seen. It reports whether the discovery was accepted.
func (s *Store) Commit(d *content.Discovery) bool {
	if err := d.Validate(); err != nil {
		logger := logging.GetLogger("store")
		logger.Debug().Err(err).Str("domain", d.Domain).Msg("Rejected invalid discovery")
		return false
	}

	s.mu.Lock()

	qk := quoteKey(d.Quote)
	dk := strings.ToLower(d.Domain)
	if s.seenQuotes.has(qk) || s.seenDomains.has(dk) {
		s.mu.Unlock()
		return false
	}
	s.seenQuotes.add(qk)
	s.seenDomains.add(dk)

	s.discoveries = append([]*content.Discovery{d}, s.discoveries...)
	s.seq++
	seq := s.seq
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot, seq)
	return true
}

// HasDomain reports whether the domain already produced a discovery
func (s *Store) HasDomain(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seenDomains.has(strings.ToLower(domain))
}

// List returns every discovery, newest first
func (s *Store) List() []*content.Discovery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Recent returns at most n of the newest discoveries
func (s *Store) Recent(n int) []*content.Discovery {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.discoveries) {
		n = len(s.discoveries)
	}
	out := make([]*content.Discovery, n)
	copy(out, s.discoveries[:n])
	return out
}

// Display returns the newest discoveries up to the configured display
// cap; older entries stay in the backing list and keep being persisted
func (s *Store) Display() []*content.Discovery {
	return s.Recent(s.config.DisplayCap)
}

// Len returns the number of retained discoveries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.discoveries)
}

// Flush waits for in-flight background saves to finish
func (s *Store) Flush() {
	s.persistWG.Wait()
}

func (s *Store) snapshotLocked() []*content.Discovery {
	out := make([]*content.Discovery, len(s.discoveries))
	copy(out, s.discoveries)
	return out
}

// persist saves a snapshot in the background; a failed save is logged
// and the in-memory state stays authoritative. Saves run one at a time,
// and a snapshot superseded while waiting for its turn is skipped.
func (s *Store) persist(snapshot []*content.Discovery, seq uint64) {
	if s.backend == nil {
		return
	}

	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()

		s.saveMu.Lock()
		defer s.saveMu.Unlock()

		s.mu.Lock()
		latest := s.seq
		s.mu.Unlock()
		if seq < latest {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.config.PersistTimeout)
		defer cancel()

		if err := s.backend.Save(ctx, snapshot); err != nil {
			logger := logging.GetLogger("store")
			logger.Warn().Err(err).Msg("Background save failed")
		}
	}()
}

// quoteKey normalizes a quote for dedup comparison
func quoteKey(quote string) string {
	return strings.ToLower(strings.Join(strings.Fields(quote), " "))
}
