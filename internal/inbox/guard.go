package inbox

import (
	"fmt"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/world"
)

// Reason is a rejection code.
type Reason string

const (
	ReasonMessageNotFound   Reason = "MESSAGE_NOT_FOUND"
	ReasonMessageDeleted    Reason = "MESSAGE_DELETED"
	ReasonActionNotAllowed  Reason = "ACTION_NOT_ALLOWED"
	ReasonAlreadyRead       Reason = "ALREADY_READ"
	ReasonNotPaymentMessage Reason = "NOT_PAYMENT_MESSAGE"
	ReasonPlayerSleeping    Reason = "PLAYER_SLEEPING"
	ReasonNotEnoughEnergy   Reason = "NOT_ENOUGH_ENERGY"
	ReasonInboxFull         Reason = "INBOX_FULL"
	ReasonInboxLocked       Reason = "INBOX_LOCKED"
	ReasonInvalidState      Reason = "INVALID_STATE"
)

// Rejection is a refused action: an expected outcome, never a failure.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Request is a player's request to apply an action to a message.
type Request struct {
	MessageID string
	Action    world.Action
	Source    string
}

// Approval is what a passing guard resolved.
type Approval struct {
	Request Request

	// Message is a snapshot taken during validation.
	Message world.Message

	Cost config.ActionCost

	// Payment is set for collect actions.
	Payment *world.Payment
}

// Validate runs the action guard. It only reads w, so it can be called any
// number of times without effect.
//
// Checks run in order and the first failure wins: message exists, message is
// not deleted, action is allowed on the message, action-specific checks
// (read: not already read; collect: payment message with a payment record),
// player is awake, player has the energy the action costs.
func Validate(w *world.World, costs map[world.Action]config.ActionCost, req Request) (Approval, *Rejection) {
	msg := w.Messages.Find(req.MessageID)
	if msg == nil {
		return Approval{}, reject(ReasonMessageNotFound, "message %q does not exist", req.MessageID)
	}
	if msg.IsDeleted() {
		return Approval{}, reject(ReasonMessageDeleted, "message %q has been deleted", req.MessageID)
	}
	if !msg.Allows(req.Action) {
		return Approval{}, reject(ReasonActionNotAllowed, "%q is not possible on this message", req.Action)
	}

	cost, known := costs[req.Action]
	if !known {
		return Approval{}, reject(ReasonActionNotAllowed, "%q is not a supported action", req.Action)
	}

	approval := Approval{Request: req, Message: msg.Clone(), Cost: cost}

	switch req.Action {
	case world.ActionRead:
		if msg.IsRead() {
			return Approval{}, reject(ReasonAlreadyRead, "message has already been read")
		}
	case world.ActionCollect:
		if msg.Type != world.MessagePayment {
			return Approval{}, reject(ReasonNotPaymentMessage, "only payment messages can be collected")
		}
		p := w.FindPaymentByMessage(msg.ID)
		if p == nil {
			p = w.FindPayment(msg.ID)
		}
		if p == nil || p.Status == world.PaymentCollected {
			return Approval{}, reject(ReasonActionNotAllowed, "there is no payment to collect for this message")
		}
		pc := *p
		approval.Payment = &pc
	}

	if w.Player.IsSleeping() {
		return Approval{}, reject(ReasonPlayerSleeping, "you are asleep")
	}
	if w.Player.Stats.Energy < cost.Energy {
		return Approval{}, reject(ReasonNotEnoughEnergy, "%s needs %g energy, you have %.1f",
			req.Action, cost.Energy, w.Player.Stats.Energy)
	}

	return approval, nil
}
