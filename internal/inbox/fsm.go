package inbox

import (
	"fmt"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/world"
)

// State is the inbox state machine's state.
type State string

const (
	StateIdle   State = "idle"
	StateLocked State = "locked"

	// StateProcessing is reserved. Actions pass through it within a single
	// transition, so it is never observed between commands.
	StateProcessing State = "processing"
)

// Command is an input to Transition.
type Command interface {
	command()
}

// ActionCommand applies an action to a message.
type ActionCommand struct{ Request Request }

// LockCommand rejects every action until unlocked.
type LockCommand struct{ Reason string }

// UnlockCommand returns a locked inbox to idle.
type UnlockCommand struct{}

// ResetCommand clears every message.
type ResetCommand struct{ Source string }

// HardDeleteCommand physically removes one message.
type HardDeleteCommand struct{ MessageID string }

func (ActionCommand) command()     {}
func (LockCommand) command()       {}
func (UnlockCommand) command()     {}
func (ResetCommand) command()      {}
func (HardDeleteCommand) command() {}

// Effect is a side effect Transition asks the caller to perform.
type Effect interface {
	effect()
}

type (
	MarkRead      struct{ MessageID string }
	MarkSpam      struct{ MessageID string }
	SoftDelete    struct{ MessageID string }
	HardDelete    struct{ MessageID string }
	ClearMessages struct{}
	SpendEnergy   struct{ Amount float64 }
	GrantXP       struct{ Amount int }
	Publish       struct{ Event event.Event }
	RecordAudit   struct{ Audit world.LastAction }
)

func (MarkRead) effect()      {}
func (MarkSpam) effect()      {}
func (SoftDelete) effect()    {}
func (HardDelete) effect()    {}
func (ClearMessages) effect() {}
func (SpendEnergy) effect()   {}
func (GrantXP) effect()       {}
func (Publish) effect()       {}
func (RecordAudit) effect()   {}

// Env is the read-only input Transition decides against.
type Env struct {
	World *world.World
	Costs map[world.Action]config.ActionCost
	NowMs int64
}

// Transition is the pure inbox state machine. It reads env and returns the
// next state and the effects to replay, in order. It never mutates anything.
//
// Rejected actions produce exactly two effects: the rejection event and the
// failed audit record. Store, energy and XP are untouched.
func Transition(state State, cmd Command, env Env) (State, []Effect) {
	switch c := cmd.(type) {
	case ActionCommand:
		return actionTransition(state, c.Request, env)

	case LockCommand:
		if state == StateLocked {
			return state, nil
		}
		return StateLocked, []Effect{
			Publish{event.InboxStateChanged{From: string(state), To: string(StateLocked)}},
		}

	case UnlockCommand:
		if state != StateLocked {
			return state, nil
		}
		return StateIdle, []Effect{
			Publish{event.InboxStateChanged{From: string(state), To: string(StateIdle)}},
		}

	case ResetCommand:
		if state != StateIdle {
			return state, []Effect{Publish{event.InboxResetRejected{State: string(state)}}}
		}
		return state, []Effect{
			ClearMessages{},
			Publish{event.InboxResetCompleted{Removed: env.World.Messages.Len()}},
		}

	case HardDeleteCommand:
		if state != StateIdle || env.World.Messages.Find(c.MessageID) == nil {
			return state, nil
		}
		return state, []Effect{
			HardDelete{c.MessageID},
			Publish{event.MessageHardDeleted{MessageID: c.MessageID}},
		}
	}
	return state, nil
}

func actionTransition(state State, req Request, env Env) (State, []Effect) {
	switch state {
	case StateLocked:
		return state, rejected(req, reject(ReasonInboxLocked, "the inbox is locked"), env.NowMs)
	case StateIdle:
	default:
		return state, rejected(req, reject(ReasonInvalidState, "the inbox cannot act while %s", state), env.NowMs)
	}

	approval, rej := Validate(env.World, env.Costs, req)
	if rej != nil {
		return state, rejected(req, rej, env.NowMs)
	}

	// idle -> processing -> idle
	return StateIdle, executed(approval, env.NowMs)
}

func rejected(req Request, rej *Rejection, nowMs int64) []Effect {
	return []Effect{
		Publish{event.MessageActionRejected{
			MessageID: req.MessageID,
			Action:    req.Action,
			Reason:    string(rej.Reason),
			Message:   rej.Message,
		}},
		RecordAudit{world.LastAction{
			MessageID: req.MessageID,
			Action:    req.Action,
			Source:    req.Source,
			Success:   false,
			Reason:    string(rej.Reason),
			AtMs:      nowMs,
		}},
	}
}

func executed(a Approval, nowMs int64) []Effect {
	req := a.Request
	id := req.MessageID

	var effects []Effect
	switch req.Action {
	case world.ActionRead:
		effects = append(effects, MarkRead{id})
	case world.ActionSpam:
		effects = append(effects, MarkSpam{id})
	case world.ActionArchive, world.ActionDelete:
		effects = append(effects, SoftDelete{id})
	case world.ActionAccept:
		effects = append(effects,
			SoftDelete{id},
			Publish{event.OrderAccepted{MessageID: id, Message: a.Message}},
		)
	case world.ActionCollect:
		effects = append(effects,
			SoftDelete{id},
			Publish{event.PaymentCollected{MessageID: id, Message: a.Message}},
		)
	}

	refs := map[string]string{"message_id": id}
	if a.Payment != nil {
		refs["payment_id"] = a.Payment.ID
	}

	effects = append(effects,
		SpendEnergy{a.Cost.Energy},
		GrantXP{a.Cost.XP},
		Publish{event.TaskFinished{
			TaskID:          fmt.Sprintf("inbox:%s:%s", req.Action, id),
			TaskKind:        "inbox." + string(req.Action),
			Source:          req.Source,
			EnergyCost:      a.Cost.Energy,
			TimeCostMinutes: a.Cost.TimeMinutes,
			XPGain:          a.Cost.XP,
			Refs:            refs,
			Tags:            []string{"inbox", string(a.Message.Type)},
		}},
		RecordAudit{world.LastAction{
			MessageID: id,
			Action:    req.Action,
			Source:    req.Source,
			Success:   true,
			AtMs:      nowMs,
		}},
	)
	return effects
}
