package animation

import (
	"context"
	"sync"
	"time"
)

// DefaultFPS is used when a ticker scheduler is created without a rate
const DefaultFPS = 60

// Scheduler is the per-frame scheduling primitive. A requested callback runs
// once, on the next frame.
type Scheduler interface {
	RequestFrame(fn func())
}

// frameQueue holds callbacks waiting for the next frame
type frameQueue struct {
	mu      sync.Mutex
	pending []func()
}

// RequestFrame queues fn for the next frame
func (q *frameQueue) RequestFrame(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Pending returns the number of queued callbacks
func (q *frameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *frameQueue) drain() []func() {
	q.mu.Lock()
	fns := q.pending
	q.pending = nil
	q.mu.Unlock()
	return fns
}

// ManualScheduler advances frames only when told to
type ManualScheduler struct {
	frameQueue
}

// NewManualScheduler creates an idle manual scheduler
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Step runs one frame: every callback queued before the call. Callbacks
// requested while stepping wait for the next Step. It returns how many ran.
func (s *ManualScheduler) Step() int {
	fns := s.drain()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Run steps n frames and returns the total number of callbacks run
func (s *ManualScheduler) Run(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += s.Step()
	}
	return total
}

// TickerScheduler fires queued callbacks at a fixed frame rate from a single
// goroutine
type TickerScheduler struct {
	frameQueue
	interval time.Duration
}

// NewTickerScheduler creates a scheduler running at fps frames per second
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &TickerScheduler{interval: time.Second / time.Duration(fps)}
}

// Interval returns the time between frames
func (s *TickerScheduler) Interval() time.Duration {
	return s.interval
}

// Run fires frames until ctx is cancelled and returns the context error
func (s *TickerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, fn := range s.drain() {
				fn()
			}
		}
	}
}
