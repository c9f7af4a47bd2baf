// ABOUTME: Unix-specific SIGWINCH handling for ProcessTerminal resize events.
// ABOUTME: Spawns a goroutine that listens for SIGWINCH until the returned stop func is called.

//go:build unix

package terminal

import (
	"os"
	"os/signal"
	"syscall"
)

// startResizeListener sets up a SIGWINCH handler that calls the
// resize callback with the new terminal dimensions.
func (t *ProcessTerminal) startResizeListener() func() {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGWINCH)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigCh:
			}
			fn := t.resizeCallback()
			if fn == nil {
				continue
			}
			w, h, err := t.Size()
			if err != nil {
				continue
			}
			fn(w, h)
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
