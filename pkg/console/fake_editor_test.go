// ABOUTME: In-memory LineEditor used by the console tests.
// ABOUTME: Records flushed output, install/remove calls, and whether the line was cleared while writing.

package console

import (
	"bytes"
	"errors"
	"io"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/mauromedda/asyncconsole/pkg/tui/key"
	"github.com/mauromedda/asyncconsole/pkg/tui/lineedit"
)

type fakeEditor struct {
	mu          sync.Mutex
	prompt      string
	buf         []rune
	point, mark int
	out         strings.Builder
	history     []string
	installs    int
	removes     int
	redisplays  int
	dirtyWrites int // writes made while the edit line was still visible
	writeErr    error
	panicWrite  bool
	installErr  error
	flushErr    error
	flushes     int

	// Optional hooks, set before Start.
	writeGate  chan struct{} // Write waits on it after announcing on writing
	writing    chan struct{}
	removeGate chan struct{} // Remove waits on it

	installGoroutine uint64
	removeGoroutine  uint64
	inRemove         bool
	overlaps         int // Install called while Remove was running
}

func (f *fakeEditor) Install() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inRemove {
		f.overlaps++
	}
	f.installGoroutine = goid()
	if f.installErr != nil {
		return f.installErr
	}
	f.installs++
	return nil
}

func (f *fakeEditor) Remove() error {
	f.mu.Lock()
	f.inRemove = true
	f.removeGoroutine = goid()
	f.mu.Unlock()
	if f.removeGate != nil {
		<-f.removeGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inRemove = false
	f.removes++
	return nil
}

func (f *fakeEditor) HandleKey(k key.Key) lineedit.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case k.Type == key.KeyRune:
		f.buf = append(f.buf[:f.point], append([]rune{k.Rune}, f.buf[f.point:]...)...)
		f.point++
	case k.Type == key.KeyEnter:
		line := string(f.buf)
		f.buf, f.point, f.mark = nil, 0, 0
		return lineedit.Result{Kind: lineedit.ResultLine, Line: line}
	case k.Is('c'):
		f.buf, f.point, f.mark = nil, 0, 0
		return lineedit.Result{Kind: lineedit.ResultInterrupt}
	case k.Is('d') && len(f.buf) == 0:
		return lineedit.Result{Kind: lineedit.ResultEOF}
	}
	return lineedit.Result{}
}

func (f *fakeEditor) Prompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompt
}

func (f *fakeEditor) SetPrompt(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt = p
}

func (f *fakeEditor) Buffer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.buf)
}

func (f *fakeEditor) ReplaceBuffer(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf = []rune(s)
	f.point = min(f.point, len(f.buf))
	f.mark = min(f.mark, len(f.buf))
}

func (f *fakeEditor) InsertText(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := []rune(s)
	f.buf = append(f.buf[:f.point], append(r, f.buf[f.point:]...)...)
	f.point += len(r)
}

func (f *fakeEditor) Point() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.point
}

func (f *fakeEditor) SetPoint(p int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.point = max(0, min(p, len(f.buf)))
}

func (f *fakeEditor) Mark() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mark
}

func (f *fakeEditor) SetMark(m int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mark = max(0, min(m, len(f.buf)))
}

func (f *fakeEditor) Redisplay() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redisplays++
}

func (f *fakeEditor) AddHistory(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, line)
}

func (f *fakeEditor) Output() io.Writer {
	return fakeStream{f}
}

// state returns buffer, point, mark and prompt in one locked read.
func (f *fakeEditor) state() (string, int, int, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.buf), f.point, f.mark, f.prompt
}

func (f *fakeEditor) output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.String()
}

func (f *fakeEditor) counts() (installs, removes, dirty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installs, f.removes, f.dirtyWrites
}

type fakeStream struct {
	f *fakeEditor
}

func (s fakeStream) Write(p []byte) (int, error) {
	f := s.f
	if f.writeGate != nil {
		f.writing <- struct{}{}
		<-f.writeGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicWrite {
		panic("stream exploded")
	}
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if len(f.buf) != 0 || f.prompt != "" {
		f.dirtyWrites++
	}
	return f.out.Write(p)
}

func (s fakeStream) Flush() error {
	f := s.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return f.flushErr
}

var errStream = errors.New("stream closed")

// goid returns the current goroutine's id from its stack header.
func goid() uint64 {
	var b [64]byte
	n := runtime.Stack(b[:], false)
	field := bytes.Fields(bytes.TrimPrefix(b[:n], []byte("goroutine ")))[0]
	id, _ := strconv.ParseUint(string(field), 10, 64)
	return id
}
