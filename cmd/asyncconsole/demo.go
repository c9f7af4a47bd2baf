// ABOUTME: The interactive demo: status producers print while the operator types commands
// ABOUTME: Producers, the line consumer and the interrupt watcher run under one errgroup

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"pkt.systems/pslog"

	"github.com/mauromedda/asyncconsole/pkg/console"
	"github.com/mauromedda/asyncconsole/pkg/tui/terminal"
)

const (
	defaultPrompt = "> "
	maxBurst      = 10000
)

const helpText = `commands:
  help            show this help
  prompt <text>   change the prompt
  burst <n>       print n lines as fast as possible
  stats           show queue counters
  quit, exit      leave (Ctrl+D works too)
`

type command struct {
	name string
	arg  string
	n    int
}

func commandWords() []string {
	return []string{"burst", "exit", "help", "prompt", "quit", "stats"}
}

// parseCommand splits an input line into a command. The empty line is the
// zero command.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{}, nil
	}
	name, rest, _ := strings.Cut(line, " ")
	cmd := command{name: strings.ToLower(name), arg: strings.TrimSpace(rest)}

	switch cmd.name {
	case "help", "stats", "quit", "exit":
	case "prompt":
		if cmd.arg == "" {
			return command{}, errors.New("usage: prompt <text>")
		}
	case "burst":
		n, err := strconv.Atoi(cmd.arg)
		if err != nil || n <= 0 || n > maxBurst {
			return command{}, fmt.Errorf("usage: burst <n> with 1 <= n <= %d", maxBurst)
		}
		cmd.n = n
	default:
		return command{}, fmt.Errorf("unknown command %q (try help)", name)
	}
	return cmd, nil
}

type demo struct {
	con       *console.Console
	term      terminal.Terminal
	log       pslog.Logger
	styles    styles
	producers int
	interval  time.Duration
}

func newDemo(con *console.Console, t terminal.Terminal, logger pslog.Logger, producers int, interval time.Duration) *demo {
	return &demo{
		con:       con,
		term:      t,
		log:       logger,
		styles:    newStyles(),
		producers: producers,
		interval:  interval,
	}
}

// run blocks until the operator quits, input ends, or ctx is cancelled.
func (d *demo) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.con.PrintLine(d.styles.info.Render("asyncconsole demo: type help for commands"))
	d.setPrompt(defaultPrompt)

	g, gctx := errgroup.WithContext(ctx)
	for i := range d.producers {
		g.Go(func() error { return d.produce(gctx, i+1) })
	}
	g.Go(func() error { return d.consume(gctx, cancel) })
	g.Go(func() error { return d.watchInterrupts(gctx, cancel) })
	err := g.Wait()

	flushCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	if werr := d.con.WaitUntilPrintedContext(flushCtx); werr != nil {
		d.log.Warn("output not drained before exit", "err", werr)
	}
	return err
}

// produce prints a status line every id*interval.
func (d *demo) produce(ctx context.Context, id int) error {
	defer terminal.Recover(d.term, d.reportPanic)

	ticker := time.NewTicker(d.interval * time.Duration(id))
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			d.con.PrintLine(d.styles.worker.Render(fmt.Sprintf("[worker %d] tick %d at %s", id, n, now.Format(time.TimeOnly))))
		}
	}
}

func (d *demo) consume(ctx context.Context, quit context.CancelFunc) error {
	defer terminal.Recover(d.term, d.reportPanic)

	for {
		line, err := d.con.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, console.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if d.dispatch(line) {
			quit()
			return nil
		}
	}
}

func (d *demo) watchInterrupts(ctx context.Context, quit context.CancelFunc) error {
	defer terminal.Recover(d.term, d.reportPanic)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-d.con.Interrupts():
			d.log.Debug("interrupt", "kind", ev.Kind)
			switch ev.Kind {
			case console.InterruptCtrlC:
				d.con.PrintLine(d.styles.warn.Render("type quit or press Ctrl+D to exit"))
			case console.InterruptEOF, console.InterruptInputEnd:
				quit()
				return nil
			}
		}
	}
}

// dispatch runs one input line and reports whether the demo should end.
func (d *demo) dispatch(line string) bool {
	cmd, err := parseCommand(line)
	if err != nil {
		d.con.PrintLine(d.styles.warn.Render(err.Error()))
		return false
	}
	switch cmd.name {
	case "":
	case "help":
		d.con.Print(helpText)
	case "prompt":
		d.setPrompt(cmd.arg + " ")
	case "burst":
		for i := 1; i <= cmd.n; i++ {
			d.con.Printf("burst %d/%d\n", i, cmd.n)
		}
	case "stats":
		st := d.con.Stats()
		d.con.Printf("input queued %d, output queued %d, dropped %d, flushes %d\n",
			st.InputQueued, st.OutputQueued, st.OutputDropped, st.Flushes)
	case "quit", "exit":
		d.con.PrintLine(d.styles.info.Render("bye"))
		return true
	}
	return false
}

func (d *demo) setPrompt(p string) {
	d.con.SetPrompt(d.styles.prompt.Render(p))
}

func (d *demo) reportPanic(v any, stack []byte) {
	d.log.Error("demo goroutine panic", "panic", v, "stack", string(stack))
}
