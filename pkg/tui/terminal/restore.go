// ABOUTME: Panic recovery helpers that leave the terminal usable after a crash.
// ABOUTME: RestoreOnPanic exits the process; Recover reports the panic and lets the goroutine end.

package terminal

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

const showCursor = "\x1b[?25h"

// RestoreOnPanic should be deferred at the top of main. On panic it shows
// the cursor, leaves raw mode, prints the panic and stack to stderr, and
// exits with code 1.
func RestoreOnPanic(t Terminal) {
	r := recover()
	if r == nil {
		return
	}
	restore(t)
	fmt.Fprintf(os.Stderr, "\r\npanic: %v\r\n\r\n%s\r\n", r, debug.Stack())
	os.Exit(1)
}

// Recover should be deferred at the top of goroutines that own the terminal
// while it is in raw mode. It restores the terminal and hands the panic
// value and stack to report (if non-nil) without exiting, so the owner can
// log it and shut down normally.
func Recover(t Terminal, report func(v any, stack []byte)) {
	r := recover()
	if r == nil {
		return
	}
	restore(t)
	if report != nil {
		report(r, debug.Stack())
	}
}

func restore(t Terminal) {
	if t == nil {
		return
	}
	if w, ok := t.(io.Writer); ok {
		_, _ = w.Write([]byte(showCursor))
	}
	_ = t.ExitRawMode()
}
