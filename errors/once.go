// Package errors implements the OCF core's error model: a small set of
// interpretable error kinds (see Kind) plus a concurrency-safe latch (Once)
// that captures the first error reported against a stream and discards the
// rest.
package errors

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Once captures at most one error. Errors are safely set across multiple
// goroutines, which matters here because a compression codec's completion
// callback may run on a goroutine distinct from the one that started it.
//
// A zero Once is ready to use.
//
// Example:
//	var e errors.Once
//	e.Set(errors.New("test error 0"))
type Once struct {
	// Ignored is a list of errors that will be dropped in Set. The
	// streams in package ocf leave it empty.
	Ignored []error
	mu      sync.Mutex
	err     unsafe.Pointer // stores *error
}

// Err returns the first non-nil error passed to Set. Calling Err is cheap.
func (e *Once) Err() error {
	p := atomic.LoadPointer(&e.err) // Acquire load
	if p == nil {
		return nil
	}
	return *(*error)(p)
}

// Set sets this instance's error to err. Only the first error is kept;
// subsequent calls, including ones with a different error, are no-ops.
func (e *Once) Set(err error) {
	if err == nil {
		return
	}
	for _, ignored := range e.Ignored {
		if err == ignored {
			return
		}
	}
	e.mu.Lock()
	if e.err == nil {
		atomic.StorePointer(&e.err, unsafe.Pointer(&err)) // Release store
	}
	e.mu.Unlock()
}
