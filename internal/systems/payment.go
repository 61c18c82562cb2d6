package systems

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

// PaymentActions are the actions offered on a payment message.
var PaymentActions = []world.Action{
	world.ActionRead,
	world.ActionCollect,
	world.ActionDelete,
	world.ActionSpam,
}

type scheduledPayment struct {
	OrderID  string
	DueMs    int64
	Amount   decimal.Decimal
	Customer string
	Subject  string
}

type paymentBook struct {
	pending map[string]*scheduledPayment

	// scheduled remembers every order ever scheduled, so a repeated
	// OrderShipped never schedules twice, even after the payment fired.
	scheduled map[string]bool
}

func newPaymentBook() paymentBook {
	return paymentBook{
		pending:   make(map[string]*scheduledPayment),
		scheduled: make(map[string]bool),
	}
}

// Payments schedules customer payments for shipped orders and delivers them
// when due.
//
// Each due payment rolls payment.success_probability once. Success records a
// Payment, publishes PaymentReceived and a payment message for the inbox.
// Failure fails the order and publishes PaymentFailed. Either way the entry
// is removed; a failed payment is never retried.
type Payments struct {
	queue *event.Queue
	book  sched.Storage[paymentBook]
}

func NewPayments() *Payments { return &Payments{} }

func (s *Payments) Name() string { return "payments" }

func (s *Payments) Init(bus *event.Bus) error {
	s.queue = bus.Queue(event.KindOrderShipped, event.KindPaymentCollected)
	return nil
}

// Pending returns the number of scheduled, undelivered payments.
func (s *Payments) Pending() int {
	return len(s.book.Get(newPaymentBook).pending)
}

func (s *Payments) Run(tc *sched.TickContext) error {
	book := s.book.Get(newPaymentBook)

	for _, ev := range s.queue.Drain() {
		switch e := ev.(type) {
		case event.OrderShipped:
			s.schedule(tc, book, e)
		case event.PaymentCollected:
			s.collect(tc, e)
		}
	}

	if tc.Paused() {
		return nil
	}

	now := tc.SimNow()
	var due []*scheduledPayment
	for _, p := range book.pending {
		if p.DueMs <= now {
			due = append(due, p)
		}
	}
	slices.SortFunc(due, func(a, b *scheduledPayment) int {
		if c := cmp.Compare(a.DueMs, b.DueMs); c != 0 {
			return c
		}
		return cmp.Compare(a.OrderID, b.OrderID)
	})

	for _, p := range due {
		delete(book.pending, p.OrderID)
		if rng.Chance(tc.RNG, tc.Config.Payment.SuccessProbability) {
			s.deliver(tc, p)
		} else {
			s.fail(tc, p)
		}
	}
	return nil
}

func (s *Payments) schedule(tc *sched.TickContext, book *paymentBook, e event.OrderShipped) {
	if book.scheduled[e.OrderID] {
		tc.Logger.Debug("payment already scheduled", "tick", tc.Tick, "order_id", e.OrderID)
		return
	}

	cfg := tc.Config.Payment
	amount, fixed := cfg.FixedAmountDecimal()
	if !fixed {
		amount = e.Amount
		if len(e.LineItems) > 0 {
			amount = world.SumLineItems(e.LineItems)
		}
	}

	due := tc.SimNow() + cfg.DelayMs
	if cfg.JitterMs > 0 {
		due += int64(math.Round(float64(cfg.JitterMs) * (2*tc.RNG() - 1)))
	}

	book.scheduled[e.OrderID] = true
	book.pending[e.OrderID] = &scheduledPayment{
		OrderID:  e.OrderID,
		DueMs:    due,
		Amount:   amount,
		Customer: e.Customer,
		Subject:  e.Subject,
	}
	tc.Logger.Info("payment scheduled",
		"tick", tc.Tick,
		"order_id", e.OrderID,
		"due_ms", due,
		"amount", amount.StringFixed(2),
	)
}

func (s *Payments) deliver(tc *sched.TickContext, p *scheduledPayment) {
	c := tc.World.Clock
	messageID := tc.IDs.NewID()

	tc.Publish(event.PaymentReceived{
		OrderID:   p.OrderID,
		MessageID: messageID,
		Customer:  p.Customer,
		Subject:   p.Subject,
		Amount:    p.Amount,
	})

	tc.World.Payments = append(tc.World.Payments, &world.Payment{
		ID:        p.OrderID,
		MessageID: messageID,
		Status:    world.PaymentNew,
		Customer:  p.Customer,
		Subject:   p.Subject,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		CreatedAt: c.SimNowMs,
	})

	tc.Publish(event.NewMessageReceived{Message: world.Message{
		ID:              messageID,
		Type:            world.MessagePayment,
		Subject:         fmt.Sprintf("Payment received: %s", p.Subject),
		Body:            fmt.Sprintf("%s paid %s for order %s.", p.Customer, p.Amount.StringFixed(2), p.OrderID),
		Author:          p.Customer,
		Priority:        world.PriorityNormal,
		SimNowMs:        c.SimNowMs,
		DayIndex:        c.DayIndex,
		MinuteOfDay:     c.MinuteOfDay,
		Timestamp:       tc.Now,
		PossibleActions: slices.Clone(PaymentActions),
		Tags:            []string{"payment"},
	}})

	tc.Logger.Info("payment received", "tick", tc.Tick, "order_id", p.OrderID, "message_id", messageID)
}

func (s *Payments) fail(tc *sched.TickContext, p *scheduledPayment) {
	if order := tc.World.FindOrder(p.OrderID); order != nil {
		TransitionOrder(tc, order, world.TriggerFail)
	} else {
		tc.Logger.Warn("failed payment has no order", "tick", tc.Tick, "order_id", p.OrderID)
	}
	tc.Publish(event.PaymentFailed{
		OrderID:  p.OrderID,
		Customer: p.Customer,
		Subject:  p.Subject,
		Amount:   p.Amount,
	})
	tc.Logger.Info("payment failed", "tick", tc.Tick, "order_id", p.OrderID)
}

func (s *Payments) collect(tc *sched.TickContext, e event.PaymentCollected) {
	p := tc.World.FindPaymentByMessage(e.MessageID)
	if p == nil {
		p = tc.World.FindPayment(e.MessageID)
	}
	if p == nil {
		tc.Logger.Warn("collected payment not found", "tick", tc.Tick, "message_id", e.MessageID)
		return
	}
	if p.Collect(tc.SimNow()) {
		tc.Logger.Info("payment collected", "tick", tc.Tick, "payment_id", p.ID, "amount", p.Amount.StringFixed(2))
	}
}
