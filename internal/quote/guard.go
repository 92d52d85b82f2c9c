package quote

import (
	"context"
	"strconv"
	"sync"
)

// Guard keeps at most one submission per key in flight. TryAcquire returns a
// token that Release must present, so a holder whose lock already expired
// cannot free someone else's.
type Guard interface {
	TryAcquire(ctx context.Context, key string) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu       sync.Mutex
	next     uint64
	inflight map[string]string
}

// NewMemoryGuard constructs an empty MemoryGuard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{inflight: make(map[string]string)}
}

// TryAcquire marks key as busy; ok is false if it already was.
func (g *MemoryGuard) TryAcquire(ctx context.Context, key string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return "", false, nil
	}
	g.next++
	token := strconv.FormatUint(g.next, 10)
	g.inflight[key] = token
	return token, true, nil
}

// Release frees key when token still owns it.
func (g *MemoryGuard) Release(ctx context.Context, key, token string) error {
	g.mu.Lock()
	if g.inflight[key] == token {
		delete(g.inflight, key)
	}
	g.mu.Unlock()
	return nil
}

var _ Guard = (*MemoryGuard)(nil)
