package sitehost

import (
	"context"
	"sync"
)

// slugLocks hands out one exclusive lock per slug. Entries are reference
// counted and dropped once no caller holds or waits on them.
type slugLocks struct {
	mu    sync.Mutex
	locks map[string]*slugLock
}

type slugLock struct {
	ch   chan struct{}
	refs int
}

func newSlugLocks() *slugLocks {
	return &slugLocks{locks: make(map[string]*slugLock)}
}

// Lock blocks until the slug is free or ctx is done. The returned unlock
// function is safe to call more than once.
func (l *slugLocks) Lock(ctx context.Context, slug string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[slug]
	if !ok {
		lk = &slugLock{ch: make(chan struct{}, 1)}
		l.locks[slug] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-lk.ch
				l.release(slug, lk)
			})
		}, nil
	case <-ctx.Done():
		l.release(slug, lk)
		return nil, ctx.Err()
	}
}

func (l *slugLocks) release(slug string, lk *slugLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, slug)
	}
}

// held returns the number of slugs with an active holder or waiter.
func (l *slugLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
