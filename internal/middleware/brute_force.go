package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	bruteForceMaxAttempts = 5
	bruteForceWindow      = 15 * time.Minute
	bruteForceLockout     = 5 * time.Minute
	bruteForceCleanup     = 60 * time.Second
	bruteForceMaxRecords  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

func (r *failureRecord) locked(now time.Time) bool {
	return !r.lockedAt.IsZero() && now.Sub(r.lockedAt) < bruteForceLockout
}

func (r *failureRecord) stale(now time.Time) bool {
	if !r.lockedAt.IsZero() {
		return now.Sub(r.lockedAt) >= bruteForceLockout
	}
	return now.Sub(r.firstFail) >= bruteForceWindow
}

// BruteForceGuard locks out credentials that fail authentication
// bruteForceMaxAttempts times within bruteForceWindow.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
	now     func() time.Time
}

// NewBruteForceGuard creates a guard whose cleanup goroutine stops when ctx
// is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := &BruteForceGuard{
		records: make(map[string]*failureRecord),
		log:     log,
		now:     time.Now,
	}
	go g.cleanupLoop(ctx)
	return g
}

// IsBlocked reports whether credential is currently locked out.
func (g *BruteForceGuard) IsBlocked(credential string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[hashKey(credential)]

	return ok && rec.locked(g.now())
}

// RecordFailure counts a failed authentication for credential.
func (g *BruteForceGuard) RecordFailure(credential string) {
	kh := hashKey(credential)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[kh]
	if !ok || now.Sub(rec.firstFail) > bruteForceWindow {
		if !ok && len(g.records) >= bruteForceMaxRecords {
			g.sweep(now)
		}
		g.records[kh] = &failureRecord{attempts: 1, firstFail: now}
		return
	}

	rec.attempts++
	if rec.attempts >= bruteForceMaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("key_hash", kh[:16]+"...").Warn("credential locked out after repeated auth failures")
	}
}

// ResetKey clears failure tracking for credential after a successful login.
func (g *BruteForceGuard) ResetKey(credential string) {
	g.mu.Lock()
	delete(g.records, hashKey(credential))
	g.mu.Unlock()
}

// sweep drops stale records. Caller must hold g.mu.
func (g *BruteForceGuard) sweep(now time.Time) {
	for k, rec := range g.records {
		if rec.stale(now) {
			delete(g.records, k)
		}
	}
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(bruteForceCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.mu.Lock()
			g.sweep(g.now())
			g.mu.Unlock()
		}
	}
}

// BruteForceMiddleware rejects requests carrying a locked-out credential
// before any lookup happens.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if credential := ExtractBearerToken(c); credential != "" && guard.IsBlocked(credential) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}

		c.Next()
	}
}
