package animation_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/TFMV/giantgraph/animation"
)

const (
	opStart = iota
	opPause
	opUnpause
	opEnd
	opStep
	opCount
)

// TestLifecycleProperties drives controllers with random call sequences and
// compares them with the state machine they implement
func TestLifecycleProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("state follows the lifecycle machine", prop.ForAll(
		func(ops []int) bool {
			sched := animation.NewManualScheduler()
			ctrl, err := animation.New(baseOptions(&recordingSurface{}, sched))
			if err != nil {
				return false
			}

			want := animation.Stopped
			for _, op := range ops {
				switch op {
				case opStart:
					ctrl.Start()
					if want == animation.Stopped {
						want = animation.Running
					}
				case opPause:
					ctrl.Pause()
					if want == animation.Running {
						want = animation.Paused
					}
				case opUnpause:
					ctrl.Unpause()
					if want == animation.Paused {
						want = animation.Running
					}
				case opEnd:
					ctrl.End()
					want = animation.Stopped
				case opStep:
					sched.Step()
				}
				if ctrl.State() != want {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, opCount-1)),
	))

	properties.Property("at most one live tick is queued after a step", prop.ForAll(
		func(ops []int) bool {
			sched := animation.NewManualScheduler()
			ctrl, err := animation.New(baseOptions(&recordingSurface{}, sched))
			if err != nil {
				return false
			}

			for _, op := range ops {
				switch op {
				case opStart:
					ctrl.Start()
				case opPause:
					ctrl.Pause()
				case opUnpause:
					ctrl.Unpause()
				case opEnd:
					ctrl.End()
				}
				sched.Step()

				live := 0
				if ctrl.State() != animation.Stopped {
					live = 1
				}
				if sched.Pending() != live {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, opCount-1)),
	))

	properties.Property("edge count never exceeds the complete graph", prop.ForAll(
		func(steps int) bool {
			sched := animation.NewManualScheduler()
			ctrl, err := animation.New(baseOptions(&recordingSurface{}, sched))
			if err != nil {
				return false
			}
			ctrl.Start()
			sched.Run(steps)

			stats := ctrl.Stats()
			return stats.EdgeCount <= stats.MaxEdges && len(ctrl.Edges()) == stats.EdgeCount
		},
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}
