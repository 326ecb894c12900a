package rpc

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/isoforge/pkg/service"
)

// RateLimit bounds calls per caller. Zero RPS disables limiting.
type RateLimit struct {
	RPS   float64 `env:"RPC_RATE_LIMIT_RPS" envDefault:"30"`
	Burst int     `env:"RPC_RATE_LIMIT_BURST" envDefault:"60"`
}

type keyLimiter struct {
	byKey   map[string]*limitEntry
	limit   rate.Limit
	burst   int
	hits    uint64
	idleTTL time.Duration
	mu      sync.Mutex
}

type limitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newKeyLimiter(cfg RateLimit) *keyLimiter {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &keyLimiter{
		limit:   rate.Limit(cfg.RPS),
		burst:   burst,
		byKey:   make(map[string]*limitEntry),
		idleTTL: 10 * time.Minute,
	}
}

func (l *keyLimiter) allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.byKey[key]
	if !ok {
		entry = &limitEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = entry
	}
	entry.lastSeen = now
	allowed := entry.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}

// limitKey prefers the session identity and falls back to the client address.
func limitKey(r *http.Request, svc *service.Service) string {
	if svc != nil {
		if s := svc.Session(); s != nil && s.ID != "" {
			return "session:" + s.ID
		}
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return "ip:" + remote
	}
	return "ip:" + host
}
