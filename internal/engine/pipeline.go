package engine

import (
	"github.com/roach88/inboxsim/internal/inbox"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/systems"
)

// DefaultPipeline returns the systems in their declared run order.
//
// Order matters: the time scale is applied before the clock advances, the
// bridge admits messages before the inbox acts on them, and Tock closes the
// tick.
func DefaultPipeline() sched.Pipeline {
	return sched.Pipeline{
		systems.Tick{},
		systems.NewTimeScale(),
		systems.NewDayCycle(),
		systems.NewInboxBridge(),
		inbox.NewSystem(),
		systems.NewOrders(),
		systems.NewPayments(),
		systems.NewTimers(),
		systems.NewEnergy(),
		systems.NewSleep(),
		systems.NewRoller(),
		systems.Tock{},
	}
}
