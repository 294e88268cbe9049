package booking

import (
	"context"
	"sync"
)

// Locker serializes booking writes that touch the same key. Unlock must be
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LocalLocker is a Locker for a single process. Entries live only while a
// holder or waiter references them.
type LocalLocker struct {
	mu   sync.Mutex
	sems map[string]*localSem
}

type localSem struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sems: make(map[string]*localSem)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.sems[key]
	if !ok {
		sem = &localSem{ch: make(chan struct{}, 1)}
		l.sems[key] = sem
	}
	sem.refs++
	l.mu.Unlock()

	select {
	case sem.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, sem)
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-sem.ch
			l.release(key, sem)
		})
	}, nil
}

func (l *LocalLocker) release(key string, sem *localSem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem.refs--
	if sem.refs == 0 {
		delete(l.sems, key)
	}
}
