package evidence

import (
	"context"
	"io"
	"sync"
)

// LazyStore opens the store behind uri on first use, so commands that never
// touch a photo never dial a bucket.
type LazyStore struct {
	uri string

	mu    sync.Mutex
	store Store
}

func NewLazyStore(uri string) *LazyStore {
	return &LazyStore{uri: uri}
}

func (l *LazyStore) open(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		return l.store, nil
	}
	s, err := Open(ctx, l.uri)
	if err != nil {
		return nil, err
	}
	l.store = s
	return s, nil
}

func (l *LazyStore) Put(ctx context.Context, data []byte, filename string) (string, error) {
	s, err := l.open(ctx)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, data, filename)
}

func (l *LazyStore) Get(ctx context.Context, ref string) ([]byte, error) {
	s, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ref)
}

// Close closes the underlying store if it was opened and holds resources.
func (l *LazyStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
