package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/contractgest/internal/doctree"
)

// Result is one parsed document.
type Result struct {
	ID          string                    `json:"document_id"`
	Filename    string                    `json:"filename"`
	ContentHash string                    `json:"content_hash"`
	Pages       int                       `json:"pages"`
	Cached      bool                      `json:"cached"`
	Metadata    *doctree.DocumentMetadata `json:"metadata"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// ResultStore is a thread-safe in-memory registry of recent results with
// TTL eviction.
type ResultStore struct {
	mu      sync.Mutex
	results map[string]*Result
	ttl     time.Duration
}

func NewResultStore(ttl time.Duration) *ResultStore {
	return &ResultStore{
		results: make(map[string]*Result),
		ttl:     ttl,
	}
}

func (s *ResultStore) Put(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.ID] = r
}

func (s *ResultStore) Get(id string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[id]
}

// Delete removes a result and reports whether it existed.
func (s *ResultStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.results[id]
	delete(s.results, id)
	return ok
}

// Len returns the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Cleanup removes expired results.
func (s *ResultStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, r := range s.results {
		if now.Sub(r.CreatedAt) > s.ttl {
			delete(s.results, id)
		}
	}
}

// RunCleanup evicts expired results every interval until ctx is done.
func (s *ResultStore) RunCleanup(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := s.Len()
			s.Cleanup()
			if evicted := before - s.Len(); evicted > 0 {
				log.Debug("evicted parse results", "count", evicted)
			}
		}
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
