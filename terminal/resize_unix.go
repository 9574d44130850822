//go:build unix

package terminal

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
)

// ResizeEvent carries the new terminal dimensions
type ResizeEvent struct {
	Cols int
	Rows int
}

// ResizeWatcher turns SIGWINCH into ResizeEvents.
// Pages are laid out once per telling, so the player only uses these to
// warn that the current layout is stale.
type ResizeWatcher struct {
	sigCh   chan os.Signal
	eventCh chan ResizeEvent
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatchResize starts listening for SIGWINCH
func WatchResize() *ResizeWatcher {
	r := &ResizeWatcher{
		sigCh:   make(chan os.Signal, 1),
		eventCh: make(chan ResizeEvent, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	signal.Notify(r.sigCh, syscall.SIGWINCH)
	go r.watchLoop()
	return r
}

// Stop ends the watcher and waits for its goroutine
func (r *ResizeWatcher) Stop() {
	signal.Stop(r.sigCh)
	close(r.stopCh)
	<-r.doneCh
}

// Pending returns the latest resize since the previous call, if any
func (r *ResizeWatcher) Pending() (ResizeEvent, bool) {
	select {
	case ev := <-r.eventCh:
		return ev, true
	default:
		return ResizeEvent{}, false
	}
}

func (r *ResizeWatcher) watchLoop() {
	defer close(r.doneCh)

	defer func() {
		if p := recover(); p != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\n\x1b[31mRESIZE HANDLER CRASHED: %v\x1b[0m\n", p)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		select {
		case <-r.stopCh:
			return
		case <-r.sigCh:
			cols, rows := Size()
			ev := ResizeEvent{Cols: cols, Rows: rows}
			// Keep only the newest event
			select {
			case r.eventCh <- ev:
			default:
				select {
				case <-r.eventCh:
				default:
				}
				r.eventCh <- ev
			}
		}
	}
}
