package systems

import (
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/sched"
)

// DropReasonInboxFull is the MessageDropped reason when the inbox is at
// capacity.
const DropReasonInboxFull = "INBOX_FULL"

// DropReasonDuplicate is the MessageDropped reason for a reused message id.
const DropReasonDuplicate = "DUPLICATE_ID"

// InboxBridge admits produced messages into the store.
type InboxBridge struct {
	queue *event.Queue
}

func NewInboxBridge() *InboxBridge { return &InboxBridge{} }

func (s *InboxBridge) Name() string { return "inbox-bridge" }

func (s *InboxBridge) Init(bus *event.Bus) error {
	s.queue = bus.Queue(event.KindNewMessageReceived)
	return nil
}

func (s *InboxBridge) Run(tc *sched.TickContext) error {
	msgs := tc.World.Messages
	for _, ev := range s.queue.Drain() {
		msg := ev.(event.NewMessageReceived).Message

		if msgs.IsFull(tc.Config.Inbox.Capacity) {
			tc.Logger.Debug("message dropped", "tick", tc.Tick, "message_id", msg.ID, "reason", DropReasonInboxFull)
			tc.Publish(event.MessageDropped{MessageID: msg.ID, Reason: DropReasonInboxFull})
			continue
		}
		if !msgs.Add(msg) {
			tc.Logger.Warn("duplicate message id", "tick", tc.Tick, "message_id", msg.ID)
			tc.Publish(event.MessageDropped{MessageID: msg.ID, Reason: DropReasonDuplicate})
			continue
		}
		tc.Publish(event.MessageAdmitted{MessageID: msg.ID, Type: msg.Type})
	}
	return nil
}
