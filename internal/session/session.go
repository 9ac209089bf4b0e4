// Package session holds the per-user state of the explorer: the protein
// list loaded by the last successful fetch.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"proteinstruct/internal/protein"
)

// Session is created empty and replaced wholesale on each successful fetch.
type Session struct {
	ID uuid.UUID

	mu       sync.RWMutex
	species  string
	maxCount int
	proteins []protein.Record
	loadedAt time.Time
}

// Snapshot is a read-only view of a session's current collection.
type Snapshot struct {
	Species  string
	MaxCount int
	Proteins []protein.Record
	LoadedAt time.Time
}

// New returns an empty session with a random id.
func New() *Session {
	return &Session{ID: uuid.New()}
}

// Replace swaps the protein list for the result of a new fetch.
func (s *Session) Replace(species string, maxCount int, proteins []protein.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.species = species
	s.maxCount = maxCount
	s.proteins = proteins
	s.loadedAt = time.Now()
}

// Snapshot returns the current collection.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Species: s.species, MaxCount: s.maxCount, Proteins: s.proteins, LoadedAt: s.loadedAt}
}

// Loaded reports whether a fetch has populated the session.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loadedAt.IsZero()
}

// Protein looks a record up by accession in the current collection.
func (s *Session) Protein(accession string) (protein.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return protein.Find(s.proteins, accession)
}

// DefaultCapacity bounds the number of live sessions in a Store.
const DefaultCapacity = 1024

// Store keeps sessions by id. When full, the least recently used session is
// evicted; its browser gets a fresh session on the next request.
type Store struct {
	sessions *lru.Cache[uuid.UUID, *Session]
}

// NewStore returns an empty store holding at most capacity sessions.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	// New only fails for a non-positive size
	cache, _ := lru.New[uuid.UUID, *Session](capacity)
	return &Store{sessions: cache}
}

// Create registers and returns a new empty session.
func (st *Store) Create() *Session {
	s := New()
	st.sessions.Add(s.ID, s)
	return s
}

// Get returns the session for id and marks it as recently used.
func (st *Store) Get(id uuid.UUID) (*Session, bool) {
	return st.sessions.Get(id)
}

// GetOrCreate parses raw as a session id and returns the matching session,
// or a new one when raw is empty, malformed, unknown or evicted. created
// reports whether a new session was made.
func (st *Store) GetOrCreate(raw string) (s *Session, created bool) {
	if id, err := uuid.Parse(raw); err == nil {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}
	return st.Create(), true
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	return st.sessions.Len()
}
