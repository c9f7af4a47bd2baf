// ABOUTME: The worker loop: the only goroutine that touches the editor and the terminal.
// ABOUTME: Each pass handles pending keys, then flushes queued output and announces the drain.

package console

import (
	"runtime/debug"
	"time"

	"github.com/mauromedda/asyncconsole/pkg/tui/key"
	"github.com/mauromedda/asyncconsole/pkg/tui/lineedit"
)

func (c *Console) run(quit, done chan struct{}, keys <-chan key.Key, installed chan<- error) {
	defer close(done)
	if err := c.editor.Install(); err != nil {
		installed <- err
		return
	}
	installed <- nil

	defer c.stopped(quit)
	defer func() {
		if err := c.editor.Remove(); err != nil {
			c.log.Warn("console editor remove failed", "err", err)
		}
	}()
	defer c.recoverWorker()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	var redraw <-chan struct{}
	if r, ok := c.editor.(Redrawer); ok {
		redraw = r.RedrawRequests()
	}

	c.flushOutput()
	for {
		select {
		case <-quit:
			return
		case k, ok := <-keys:
			if !ok {
				keys = nil
				c.endOfInput()
				continue
			}
			c.handleKey(k)
		case <-redraw:
			c.editor.Redisplay()
		case <-c.out.Wake():
		case <-ticker.C:
		}
		keys = c.drainKeys(keys)
		c.flushOutput()
	}
}

// drainKeys handles every key already waiting. It returns nil once the
// key channel is closed.
func (c *Console) drainKeys(keys <-chan key.Key) <-chan key.Key {
	for keys != nil {
		select {
		case k, ok := <-keys:
			if !ok {
				c.endOfInput()
				return nil
			}
			c.handleKey(k)
		default:
			return keys
		}
	}
	return nil
}

func (c *Console) handleKey(k key.Key) {
	res := c.editor.HandleKey(k)
	switch res.Kind {
	case lineedit.ResultLine:
		c.lineRead(res.Line)
	case lineedit.ResultInterrupt:
		c.notify(InterruptCtrlC)
	case lineedit.ResultEOF:
		c.notify(InterruptEOF)
	}
}

// lineRead records a submitted line and clears a transient prompt so it is
// not shown again after Enter.
func (c *Console) lineRead(line string) {
	c.editor.AddHistory(line)
	c.in.Push(line)
	if c.editor.Prompt() != "" && !c.opts.KeepPrompt {
		c.editor.SetPrompt("")
	}
	c.editor.Redisplay()
}

func (c *Console) endOfInput() {
	if c.inputEnded.CompareAndSwap(false, true) {
		c.notify(InterruptInputEnd)
	}
}

func (c *Console) flushOutput() {
	if c.out.Len() == 0 {
		return
	}
	c.out.beginFlush()
	defer c.out.markDrained()
	c.flush()
	c.flushes.Add(1)
}

// recoverWorker logs a worker panic. The deferred Remove restores the
// terminal afterwards.
func (c *Console) recoverWorker() {
	r := recover()
	if r == nil {
		return
	}
	c.log.Error("console worker panic", "panic", r, "stack", string(debug.Stack()))
}

// stopped marks the console stopped once the editor has been removed.
func (c *Console) stopped(quit chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quit == quit {
		c.running = false
	}
}
