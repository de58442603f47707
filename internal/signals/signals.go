// Package signals traps process termination requests.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Trap calls fn once, on the first of sigs (SIGINT and SIGTERM by default).
// Any of sigs arriving later, while fn runs or after it returns, is
// swallowed until stop is called, so a second interrupt or a following
// SIGTERM cannot kill the process before the caller finishes its cleanup.
//
// The returned stop deregisters the handlers and waits for a running fn to
// finish. fn must not call stop.
func Trap(fn func(sig os.Signal), sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	ch := make(chan os.Signal, len(sigs))
	signal.Notify(ch, sigs...)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			fn(sig)
		case <-done:
			return
		}
		// signal.Notify drops deliveries to a full channel; the handlers stay
		// registered so the default action does not apply.
		<-done
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-finished
	}
}
