package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

// interruptError is the cancellation cause recorded when a shutdown signal
// arrives.
type interruptError struct {
	sig os.Signal
}

func (e *interruptError) Error() string {
	return "received " + e.sig.String()
}

// notifyContext returns a context cancelled by the first shutdown signal,
// with an *interruptError as its cause. stop releases the signal handler.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, shutdownSignals...)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			cancel(&interruptError{sig: sig})
		case <-ctx.Done():
		case <-done:
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
			cancel(context.Canceled)
		})
	}
	return ctx, stop
}
