package inbox

import (
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/sched"
)

// System runs the inbox state machine once per tick. It keeps running while
// the clock is paused; only a lock stops player actions.
type System struct {
	queue *event.Queue
	state sched.Storage[State]
}

// NewSystem returns an inbox system in the idle state.
func NewSystem() *System {
	return &System{}
}

func (s *System) Name() string { return "inbox" }

func (s *System) Init(bus *event.Bus) error {
	s.queue = bus.Queue(
		event.KindMessageActionRequested,
		event.KindInboxLockRequested,
		event.KindInboxUnlockRequested,
		event.KindInboxResetRequested,
		event.KindMessageHardDeleteRequested,
	)
	return nil
}

// State returns the current state.
func (s *System) State() State {
	return *s.state.Get(idle)
}

func (s *System) Run(tc *sched.TickContext) error {
	state := s.state.Get(idle)
	for _, ev := range s.queue.Drain() {
		cmd := commandFor(ev)
		if cmd == nil {
			continue
		}
		env := Env{World: tc.World, Costs: tc.Config.Inbox.Costs, NowMs: tc.SimNow()}
		next, effects := Transition(*state, cmd, env)
		Apply(tc, effects)
		if next != *state {
			tc.Logger.Debug("inbox state changed", "tick", tc.Tick, "from", *state, "to", next)
		}
		*state = next
	}
	return nil
}

func idle() State { return StateIdle }

func commandFor(ev event.Event) Command {
	switch e := ev.(type) {
	case event.MessageActionRequested:
		return ActionCommand{Request{MessageID: e.MessageID, Action: e.Action, Source: e.Source}}
	case event.InboxLockRequested:
		return LockCommand{Reason: e.Reason}
	case event.InboxUnlockRequested:
		return UnlockCommand{}
	case event.InboxResetRequested:
		return ResetCommand{Source: e.Source}
	case event.MessageHardDeleteRequested:
		return HardDeleteCommand{MessageID: e.MessageID}
	}
	return nil
}

// Apply replays effects against the world and bus, in order.
func Apply(tc *sched.TickContext, effects []Effect) {
	w := tc.World
	now := tc.SimNow()
	for _, eff := range effects {
		switch e := eff.(type) {
		case MarkRead:
			w.Messages.MarkRead(e.MessageID, now)
		case MarkSpam:
			w.Messages.MarkSpam(e.MessageID, now)
		case SoftDelete:
			w.Messages.MarkSoftDeleted(e.MessageID, now)
		case HardDelete:
			w.Messages.HardDelete(e.MessageID)
		case ClearMessages:
			n := w.Messages.Clear()
			tc.Logger.Info("inbox reset", "tick", tc.Tick, "removed", n)
		case SpendEnergy:
			w.Player.AddEnergy(-e.Amount)
		case GrantXP:
			w.Player.Stats.XP += e.Amount
		case Publish:
			tc.Publish(e.Event)
		case RecordAudit:
			audit := e.Audit
			w.LastAction = &audit
			if !audit.Success {
				tc.Logger.Debug("inbox action rejected",
					"tick", tc.Tick,
					"message_id", audit.MessageID,
					"action", audit.Action,
					"reason", audit.Reason,
				)
			}
		}
	}
}

var _ sched.System = (*System)(nil)

