package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result - решение лимитера по одному запросу
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter - скользящее окно: не больше limit событий на ключ за window
type Limiter interface {
	Allow(ctx context.Context, key string) Result
	Limit() int
}

const (
	maxEntries      = 10000
	cleanupInterval = time.Minute
)

type entry struct {
	timestamps []time.Time
	lastAccess time.Time
}

// MemoryLimiter - лимитер в памяти процесса (используется без Redis)
type MemoryLimiter struct {
	mu          sync.Mutex
	store       map[string]*entry
	limit       int
	window      time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		store:       make(map[string]*entry),
		limit:       limit,
		window:      window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (l *MemoryLimiter) Limit() int {
	return l.limit
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	e, ok := l.store[key]
	if !ok {
		e = &entry{}
		l.store[key] = e
	}
	e.lastAccess = now

	windowStart := now.Add(-l.window)
	filtered := e.timestamps[:0]
	for _, ts := range e.timestamps {
		if ts.After(windowStart) {
			filtered = append(filtered, ts)
		}
	}
	e.timestamps = filtered

	resetAt := now.Add(l.window)
	if len(e.timestamps) > 0 {
		resetAt = e.timestamps[0].Add(l.window)
	}

	if len(e.timestamps) >= l.limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	e.timestamps = append(e.timestamps, now)
	return Result{Allowed: true, Remaining: l.limit - len(e.timestamps), ResetAt: resetAt}
}

func (l *MemoryLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < cleanupInterval {
		return
	}
	l.lastCleanup = now

	for key, e := range l.store {
		if now.Sub(e.lastAccess) > l.window {
			delete(l.store, key)
		}
	}

	// Жесткий потолок на случай перебора уникальных ключей
	if len(l.store) > maxEntries {
		drop := len(l.store) / 5
		for key := range l.store {
			if drop == 0 {
				break
			}
			delete(l.store, key)
			drop--
		}
	}
}
