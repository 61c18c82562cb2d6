package systems

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/testutil"
)

type rig struct {
	tc      *sched.TickContext
	rec     *testutil.Recorder
	systems []sched.System
}

func newRig(t *testing.T, systems ...sched.System) *rig {
	t.Helper()
	tc := testutil.NewTickContext()
	tc.Tick = 0
	require.NoError(t, testutil.InitAll(tc, systems...))
	return &rig{tc: tc, rec: testutil.Record(tc.Bus), systems: systems}
}

// step runs one tick of the rig's systems with the given real delta.
func (r *rig) step(t *testing.T, realDeltaMs int64) {
	t.Helper()
	r.tc.Tick++
	r.tc.RealDeltaMs = realDeltaMs
	for _, s := range r.systems {
		require.NoError(t, s.Run(r.tc), s.Name())
	}
}

// advance runs only the sim-time part of a tick: it moves the clock by simMs
// and runs the rig's systems with that delta.
func (r *rig) advance(t *testing.T, simMs int64) {
	t.Helper()
	c := &r.tc.World.Clock
	c.SimNowMs += simMs
	c.LastSimDtMs = simMs
	c.Derive()
	r.tc.Tick++
	for _, s := range r.systems {
		require.NoError(t, s.Run(r.tc), s.Name())
	}
}
