package store

import (
	"context"
	"sync"
)

// shared is the process-wide Manager registered through Init.
var shared struct {
	mu sync.Mutex
	m  *Manager
}

// Init returns the process-wide Manager, creating it on first use.
//
// Calling Init again with the same connection returns the same Manager.
// Calling it with a different connection while the shared Manager is open
// returns ErrAlreadyInitialized. Once the shared Manager is closed, Init
// builds a new one.
//
// Applications that wire dependencies explicitly can use New instead.
func Init(ctx context.Context, conn Conn, opts ...Option) (*Manager, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.m != nil && !shared.m.isClosed() {
		if shared.m.conn == conn {
			return shared.m, nil
		}
		return nil, ErrAlreadyInitialized
	}

	m, err := New(ctx, conn, opts...)
	if err != nil {
		return nil, err
	}
	shared.m = m
	return m, nil
}

// Shared returns the Manager registered by Init, if it is still open.
func Shared() (*Manager, bool) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.m == nil || shared.m.isClosed() {
		return nil, false
	}
	return shared.m, true
}
