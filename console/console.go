// Package console renders run progress to a terminal. Observer implements
// core.Observer with colorized turn banners, streamed model output, tool
// call traces and board activity.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/hupe1980/autocrew/core"
)

// resultPreviewLen caps how much of a tool result is echoed to the terminal.
const resultPreviewLen = 200

// Options configure an Observer.
type Options struct {
	// Out receives all rendering. Defaults to os.Stdout.
	Out io.Writer
	// Verbose additionally streams model reasoning (dimmed).
	Verbose bool
}

// Observer pretty-prints run events. Safe for concurrent use, though the
// scheduler emits events from a single goroutine in practice.
type Observer struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	midLine bool

	banner    *color.Color
	dim       *color.Color
	toolLine  *color.Color
	boardLine *color.Color
	okLine    *color.Color
	errLine   *color.Color
}

// NewObserver constructs a console observer.
func NewObserver(optFns ...func(o *Options)) *Observer {
	opts := Options{Out: os.Stdout}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Observer{
		out:       opts.Out,
		verbose:   opts.Verbose,
		banner:    color.New(color.FgCyan, color.Bold),
		dim:       color.New(color.FgHiBlack),
		toolLine:  color.New(color.FgYellow),
		boardLine: color.New(color.FgMagenta),
		okLine:    color.New(color.FgGreen, color.Bold),
		errLine:   color.New(color.FgRed, color.Bold),
	}
}

// TurnStarted prints the turn banner.
func (o *Observer) TurnStarted(role string, turn, maxTurns int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.breakLine()
	o.banner.Fprintf(o.out, "\n=== TURN %d/%d [%s] ===\n", turn, maxTurns, role)
}

// TextDelta streams model output as it arrives.
func (o *Observer) TextDelta(role, delta string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprint(o.out, delta)
	o.midLine = !strings.HasSuffix(delta, "\n")
}

// ReasoningDelta streams model reasoning, dimmed, only in verbose mode.
func (o *Observer) ReasoningDelta(role, delta string) {
	if !o.verbose {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dim.Fprint(o.out, delta)
	o.midLine = !strings.HasSuffix(delta, "\n")
}

// ToolCallStarted prints the requested call with its raw arguments.
func (o *Observer) ToolCallStarted(role, name, args string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.breakLine()
	o.toolLine.Fprintf(o.out, "-> %s calls %s %s\n", role, name, preview(args, resultPreviewLen))
}

// ToolCallFinished prints a preview of the result, red on failure.
func (o *Observer) ToolCallFinished(role, name, result string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.breakLine()
	if err != nil {
		o.errLine.Fprintf(o.out, "   %s failed: %v\n", name, err)
		return
	}
	o.dim.Fprintf(o.out, "   %s\n", preview(result, resultPreviewLen))
}

// MessagePosted echoes board traffic.
func (o *Observer) MessagePosted(msg core.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.breakLine()
	o.boardLine.Fprintf(o.out, "[%s -> %s] %s\n", msg.Sender, msg.Recipient, preview(msg.Body, resultPreviewLen))
}

// RunFinished prints the terminal status and summary.
func (o *Observer) RunFinished(status, summary string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.breakLine()
	line := o.okLine
	if status != "done" {
		line = o.errLine
	}
	line.Fprintf(o.out, "\n=== RUN %s ===\n", strings.ToUpper(status))
	if summary != "" {
		fmt.Fprintln(o.out, summary)
	}
}

// breakLine terminates a streamed partial line before printing a full line.
// Callers must hold the mutex.
func (o *Observer) breakLine() {
	if o.midLine {
		fmt.Fprintln(o.out)
		o.midLine = false
	}
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
