package animation

import (
	"time"
)

// TickStats describes one tick
type TickStats struct {
	Frame     uint64
	Paused    bool
	EdgeAdded bool
	Attempts  int  // growth draws spent on the new edge
	Fallback  bool // growth needed a full scan
	EdgeCount int
	MaxEdges  int
	Revealed  int
	Duration  time.Duration
}

// Observer receives controller events, e.g. for metrics
type Observer interface {
	TickObserved(stats TickStats)
	HoverObserved(boosted int)
	StateChanged(state State)
}

type nopObserver struct{}

func (nopObserver) TickObserved(TickStats) {}
func (nopObserver) HoverObserved(int)      {}
func (nopObserver) StateChanged(State)     {}
