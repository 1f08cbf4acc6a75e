package client

import (
	"context"
	"sync"
)

// FulfilledFunc handles a value travelling on the success rail of a chain.
type FulfilledFunc[T any] func(ctx context.Context, v T) (T, error)

// RejectedFunc handles an error travelling on the error rail of a chain.
// Returning a nil error recovers the chain with the returned value.
type RejectedFunc[T any] func(ctx context.Context, err error) (T, error)

// Interceptor is a pair of handlers inserted into the dispatch chain.
// Either handler may be nil.
type Interceptor[T any] struct {
	Fulfilled FulfilledFunc[T]
	Rejected  RejectedFunc[T]
}

// InterceptorManager is an ordered registry of interceptors. Ejected entries
// are tombstoned in place so ids handed out earlier stay valid.
type InterceptorManager[T any] struct {
	mu       sync.RWMutex
	handlers []*Interceptor[T]
}

// NewInterceptorManager returns an empty registry.
func NewInterceptorManager[T any]() *InterceptorManager[T] {
	return &InterceptorManager[T]{}
}

// Use appends an interceptor and returns the id used to eject it later.
func (m *InterceptorManager[T]) Use(fulfilled FulfilledFunc[T], rejected RejectedFunc[T]) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers = append(m.handlers, &Interceptor[T]{
		Fulfilled: fulfilled,
		Rejected:  rejected,
	})

	return len(m.handlers) - 1
}

// Eject voids the interceptor registered under id. Unknown or already
// ejected ids are ignored.
func (m *InterceptorManager[T]) Eject(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 || id >= len(m.handlers) {
		return
	}
	m.handlers[id] = nil
}

// ForEach calls visit for every live interceptor in registration order.
// visit runs on a snapshot, so it may itself call Use or Eject.
func (m *InterceptorManager[T]) ForEach(visit func(Interceptor[T])) {
	for _, h := range m.snapshot() {
		visit(h)
	}
}

// Len returns the number of live interceptors.
func (m *InterceptorManager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int
	for _, h := range m.handlers {
		if h != nil {
			n++
		}
	}

	return n
}

func (m *InterceptorManager[T]) snapshot() []Interceptor[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	live := make([]Interceptor[T], 0, len(m.handlers))
	for _, h := range m.handlers {
		if h != nil {
			live = append(live, *h)
		}
	}

	return live
}
