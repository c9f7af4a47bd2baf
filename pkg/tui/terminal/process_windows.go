// ABOUTME: Windows stub for ProcessTerminal resize handling.
// ABOUTME: Windows has no SIGWINCH; the editor falls back to querying Size on each redraw.

//go:build windows

package terminal

// startResizeListener is a no-op on Windows.
func (t *ProcessTerminal) startResizeListener() func() {
	return func() {}
}
