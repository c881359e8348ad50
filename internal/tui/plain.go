package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/justchokingaround/extender/internal/extender"
)

// plainStep is the item progress granularity printed without a terminal
const plainStep = 10

// PlainPrinter writes events as plain lines, for pipes and dumb terminals
type PlainPrinter struct {
	mu        sync.Mutex
	w         io.Writer
	lastIndex int
	lastStep  int
}

// NewPlainPrinter creates a printer writing to w
func NewPlainPrinter(w io.Writer) *PlainPrinter {
	return &PlainPrinter{w: w, lastIndex: -1, lastStep: -1}
}

// Handle prints ev. It is meant to be passed to Subscribe.
func (p *PlainPrinter) Handle(ev extender.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Type {
	case extender.EventStatus:
		fmt.Fprintf(p.w, "[%d/%d] %s\n", ev.Index+1, ev.Total, ev.Text)

	case extender.EventItemProgress:
		if ev.Index != p.lastIndex {
			p.lastIndex = ev.Index
			p.lastStep = -1
		}
		step := ev.Percent / plainStep * plainStep
		if step == p.lastStep {
			return
		}
		p.lastStep = step
		fmt.Fprintf(p.w, "  %3d%%\n", step)

	case extender.EventFileProgress:
		// overall progress is implied by the [n/total] prefix

	case extender.EventFinished:
		fmt.Fprintln(p.w, ev.Text)
	}
}
