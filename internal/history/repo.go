package history

import (
	"sync"
	"time"

	"wine/internal/utils"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is one prediction made in a browser session.
type Entry struct {
	Time     time.Time          `json:"time"`
	Features map[string]float64 `json:"features"`
	Score    float64            `json:"score"`
	Quality  int                `json:"quality"`
}

// Repository keeps the most recent predictions of every session in memory.
// Each session owns a ring buffer of fixed length. At most sessions buffers
// are kept: appending to a new session when the store is full evicts the
// least recently used one. Sessions idle for longer than the TTL are dropped.
// Nothing is persisted.
//
//	repo := history.NewRepository(10, 10000, 30*time.Minute)
//	repo.Append(token, entry)
type Repository struct {
	length int // entries kept per session

	sessions *expirable.LRU[string, *utils.RingBuffer[Entry]]
	mu       sync.Mutex // serializes session creation
}

// NewRepository creates a repository keeping length entries for each of at
// most sessions sessions. A zero ttl disables expiry.
func NewRepository(length, sessions int, ttl time.Duration) *Repository {
	return &Repository{
		length:   length,
		sessions: expirable.NewLRU[string, *utils.RingBuffer[Entry]](sessions, nil, ttl),
	}
}

// Append records e for the session, creating its buffer on first use.
// Every append restarts the session TTL.
func (r *Repository) Append(session string, e Entry) {
	r.mu.Lock()
	buffer, found := r.sessions.Get(session)
	if !found {
		buffer = utils.NewRingBuffer[Entry](r.length)
	}
	r.sessions.Add(session, buffer)
	r.mu.Unlock()

	buffer.Push(e)
}

// Get returns the session entries, oldest first, or false for an unknown or
// expired session.
func (r *Repository) Get(session string) ([]Entry, bool) {
	buffer, found := r.sessions.Peek(session)
	if !found {
		return nil, false
	}
	return buffer.ToSlice(), true
}

// Len returns the number of stored sessions.
func (r *Repository) Len() int {
	return r.sessions.Len()
}
