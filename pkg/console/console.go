// ABOUTME: Console lets many goroutines print while one worker owns the terminal and the edit line.
// ABOUTME: Provides Start/Stop/Close lifecycle plus Print, SetPrompt, WaitUntilPrinted and line input.

package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"pkt.systems/pslog"

	"github.com/mauromedda/asyncconsole/pkg/tui/input"
	"github.com/mauromedda/asyncconsole/pkg/tui/key"
)

// DefaultPollInterval bounds how long queued output can wait for the worker.
const DefaultPollInterval = 10 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by Start while the worker is running.
	ErrAlreadyRunning = errors.New("console: already running")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("console: closed")
)

// Options configures a Console.
type Options struct {
	// Input is read for key presses once the console starts. Nil means
	// no keyboard (output only).
	Input io.Reader
	// PollInterval is the worker's idle wake-up period.
	PollInterval time.Duration
	// PromptMode selects tagged or legacy prompt detection.
	PromptMode PromptMode
	// KeepPrompt keeps the current prompt across flushes instead of
	// printing it above the flushed output and clearing it.
	KeepPrompt bool
	// OutputCapacity bounds the output queue; 0 is unbounded.
	OutputCapacity int
	// OverflowPolicy applies when OutputCapacity is reached.
	OverflowPolicy OverflowPolicy
	// Logger receives diagnostics. It must not write to the terminal the
	// console draws on. Defaults to a discarding logger.
	Logger pslog.Logger
}

// InterruptKind says why an Interrupt was raised.
type InterruptKind int

const (
	InterruptCtrlC    InterruptKind = iota // Ctrl+C; the edit line was discarded
	InterruptEOF                           // Ctrl+D on an empty line
	InterruptInputEnd                      // the input reader reached end of input
)

func (k InterruptKind) String() string {
	switch k {
	case InterruptCtrlC:
		return "ctrl-c"
	case InterruptEOF:
		return "eof"
	case InterruptInputEnd:
		return "input-end"
	}
	return fmt.Sprintf("InterruptKind(%d)", int(k))
}

// Interrupt is an out-of-band event from the keyboard.
type Interrupt struct {
	Kind InterruptKind
}

// Stats is a point-in-time view of the queues.
type Stats struct {
	InputQueued   int
	OutputQueued  int
	OutputDropped uint64
	Flushes       uint64
}

// Console is an asynchronous terminal front-end. All methods are safe for
// concurrent use.
type Console struct {
	editor LineEditor
	opts   Options
	log    pslog.Logger

	in         *InputQueue
	out        *OutputQueue
	interrupts chan Interrupt
	flushes    atomic.Uint64

	mu           sync.Mutex
	running      bool
	closed       bool
	quit         chan struct{}
	done         chan struct{}
	keys         <-chan key.Key
	inputEnded   atomic.Bool
	stopReader   context.CancelFunc
	readerExited chan struct{}
}

// New creates a stopped Console driving editor.
func New(editor LineEditor, opts Options) *Console {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.ErrorLevel})
	}
	return &Console{
		editor:     editor,
		opts:       opts,
		log:        logger.With("component", "console"),
		in:         NewInputQueue(),
		out:        NewOutputQueue(opts.OutputCapacity, opts.OverflowPolicy),
		interrupts: make(chan Interrupt, 8),
	}
}

// Start launches the worker, which installs the editor before its first
// pass. The key reader is started on the first Start and lives until Close.
func (c *Console) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.running {
		return ErrAlreadyRunning
	}
	if c.opts.Input != nil && c.stopReader == nil {
		c.startReader()
	}

	quit, done := make(chan struct{}), make(chan struct{})
	installed := make(chan error, 1)
	keys := c.keys
	if c.inputEnded.Load() {
		keys = nil
	}
	go c.run(quit, done, keys, installed)
	if err := <-installed; err != nil {
		<-done
		return fmt.Errorf("starting console: %w", err)
	}

	c.quit, c.done = quit, done
	c.running = true
	c.log.Debug("console started", "poll_interval", c.opts.PollInterval, "prompt_mode", c.opts.PromptMode)
	return nil
}

func (c *Console) startReader() {
	ctx, cancel := context.WithCancel(context.Background())
	r := input.NewReader(c.opts.Input, 0)
	c.keys = r.Keys()
	c.stopReader = cancel
	c.readerExited = make(chan struct{})
	go func(exited chan struct{}) {
		defer close(exited)
		err := r.Run(ctx)
		switch {
		case errors.Is(err, context.Canceled):
		case errors.Is(err, io.EOF):
			c.log.Debug("console input reached end")
		case err != nil:
			c.log.Warn("console input failed", "err", err)
		}
	}(c.readerExited)
}

// Stop asks the worker to finish its current iteration, waits for it to
// remove the editor, and returns. Safe to call repeatedly or before Start.
func (c *Console) Stop() {
	c.mu.Lock()
	done := c.done
	if c.running {
		select {
		case <-c.quit:
		default:
			close(c.quit)
		}
	}
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Close stops the console for good: the worker and key reader end, queued
// output and unread lines are discarded, and blocked waiters are released.
func (c *Console) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.Stop()

	c.mu.Lock()
	stop, exited := c.stopReader, c.readerExited
	c.mu.Unlock()
	if stop != nil {
		stop()
		<-exited
	}

	lines := c.in.Close()
	msgs := c.out.Close()
	c.log.Debug("console closed", "discarded_lines", lines, "discarded_output", msgs)
	return nil
}

// Running reports whether the worker is active. It stays true until the
// worker has removed the editor.
func (c *Console) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Print queues text for output. Empty strings are ignored. It does not
// block unless the output queue is bounded with the Block policy.
func (c *Console) Print(text string) {
	if text == "" {
		return
	}
	c.PrintMessage(Message{Kind: KindText, Text: text})
}

// PrintLine prints text followed by a newline if it does not already end
// with one.
func (c *Console) PrintLine(text string) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	c.Print(text)
}

// Printf formats and prints.
func (c *Console) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

// SetPrompt queues a prompt change. It takes effect in order with the
// output queued before it.
func (c *Console) SetPrompt(prompt string) {
	c.PrintMessage(Message{Kind: KindPrompt, Text: prompt})
}

// PrintMessage queues m. It panics on an unknown Kind.
func (c *Console) PrintMessage(m Message) {
	if m.Kind != KindText && m.Kind != KindPrompt {
		panic(fmt.Sprintf("console: invalid message kind %v", m.Kind))
	}
	if !c.out.Push(m) {
		c.log.Trace("console output rejected", "kind", m.Kind)
	}
}

// WaitUntilPrinted blocks until the output queue has been flushed empty.
// While the console is stopped nothing flushes, so it blocks until Start
// or Close.
func (c *Console) WaitUntilPrinted() {
	_ = c.out.WaitUntilEmpty(context.Background())
}

// WaitUntilPrintedContext is WaitUntilPrinted bounded by ctx.
func (c *Console) WaitUntilPrintedContext(ctx context.Context) error {
	return c.out.WaitUntilEmpty(ctx)
}

// GetInput returns the oldest completed line without blocking.
func (c *Console) GetInput() (string, bool) {
	return c.in.Pop()
}

// ReadLine blocks for the next completed line. It returns ErrClosed after
// Close and ctx.Err() when ctx ends.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	return c.in.ReadLine(ctx)
}

// Interrupts delivers Ctrl+C, Ctrl+D and end-of-input events. Events are
// dropped when nobody is receiving.
func (c *Console) Interrupts() <-chan Interrupt {
	return c.interrupts
}

// Writer returns an io.Writer whose writes are printed through the console.
func (c *Console) Writer() io.Writer {
	return consoleWriter{c}
}

// Stats reports queue lengths and counters.
func (c *Console) Stats() Stats {
	return Stats{
		InputQueued:   c.in.Len(),
		OutputQueued:  c.out.Len(),
		OutputDropped: c.out.Dropped(),
		Flushes:       c.flushes.Load(),
	}
}

func (c *Console) notify(k InterruptKind) {
	select {
	case c.interrupts <- Interrupt{Kind: k}:
	default:
		c.log.Debug("console interrupt dropped", "kind", k)
	}
}

type consoleWriter struct {
	c *Console
}

func (w consoleWriter) Write(p []byte) (int, error) {
	w.c.Print(string(p))
	return len(p), nil
}
