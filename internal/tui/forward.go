package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justchokingaround/extender/internal/extender"
)

// Forward returns an event subscriber that hands events to send as EventMsg.
// Item progress between 0 and 100 is dropped when it arrives sooner than
// interval after the last one forwarded; every other event always passes.
func Forward(send func(tea.Msg), interval time.Duration) func(extender.Event) {
	var (
		mu   sync.Mutex
		last time.Time
	)

	return func(ev extender.Event) {
		if ev.Type == extender.EventItemProgress && ev.Percent > 0 && ev.Percent < 100 && interval > 0 {
			mu.Lock()
			now := time.Now()
			if !last.IsZero() && now.Sub(last) < interval {
				mu.Unlock()
				return
			}
			last = now
			mu.Unlock()
		}
		send(EventMsg(ev))
	}
}
