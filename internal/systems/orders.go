package systems

import (
	"errors"
	"slices"

	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/lineitem"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

// Timer trigger kinds armed by auto-fulfilment.
const (
	TriggerOrderProcess = "order.process"
	TriggerOrderShip    = "order.ship"
)

// Order transition rejection reasons.
const (
	RejectOrderNotFound     = "ORDER_NOT_FOUND"
	RejectInvalidTransition = "INVALID_TRANSITION"
)

// Orders turns accepted purchase orders into sales orders and drives them
// through their lifecycle.
type Orders struct {
	queue *event.Queue
}

func NewOrders() *Orders { return &Orders{} }

func (s *Orders) Name() string { return "orders" }

func (s *Orders) Init(bus *event.Bus) error {
	s.queue = bus.Queue(
		event.KindOrderAccepted,
		event.KindOrderProcessRequested,
		event.KindOrderShipRequested,
		event.KindOrderCloseRequested,
		event.KindOrderCancelRequested,
		event.KindPaymentCollected,
		event.KindTimerExpired,
	)
	return nil
}

func (s *Orders) Run(tc *sched.TickContext) error {
	for _, ev := range s.queue.Drain() {
		switch e := ev.(type) {
		case event.OrderAccepted:
			s.create(tc, e)
		case event.OrderProcessRequested:
			s.request(tc, e.OrderID, world.TriggerProcess, "")
		case event.OrderShipRequested:
			s.request(tc, e.OrderID, world.TriggerShip, "")
		case event.OrderCloseRequested:
			s.request(tc, e.OrderID, world.TriggerClose, "")
		case event.OrderCancelRequested:
			s.request(tc, e.OrderID, world.TriggerCancel, e.Reason)
		case event.PaymentCollected:
			s.paid(tc, e)
		case event.TimerExpired:
			switch e.Timer.Trigger.Kind {
			case TriggerOrderProcess:
				s.request(tc, e.Timer.Trigger.Data["order_id"], world.TriggerProcess, "")
			case TriggerOrderShip:
				s.request(tc, e.Timer.Trigger.Data["order_id"], world.TriggerShip, "")
			}
		}
	}
	return nil
}

func (s *Orders) create(tc *sched.TickContext, e event.OrderAccepted) {
	msg := e.Message

	items := slices.Clone(msg.LineItems)
	if len(items) == 0 {
		items = lineitem.Generate(tc.Config.Orders.Strategy, tc.Config.Products(), tc.RNG)
	}
	for i := range items {
		items[i].Type = world.LineItemTypeCustomerPO
		items[i].Status = world.LineItemNew
	}

	order := &world.SalesOrder{
		ID:         tc.IDs.NewID(),
		Status:     world.OrderNew,
		Customer:   msg.Author,
		CustomerPO: msg.ID,
		Subject:    msg.Subject,
		LineItems:  items,
		CreatedAt:  tc.SimNow(),
	}
	if !tc.World.AddOrder(order) {
		tc.Logger.Warn("duplicate order id", "tick", tc.Tick, "order_id", order.ID)
		return
	}

	tc.Logger.Info("order created",
		"tick", tc.Tick,
		"order_id", order.ID,
		"customer", order.Customer,
		"items", len(items),
	)
	tc.Publish(event.OrderCreated{
		OrderID:   order.ID,
		MessageID: msg.ID,
		Customer:  order.Customer,
		Items:     len(items),
		Total:     order.Total(),
	})

	armOrderTimer(tc, order.ID, TriggerOrderProcess, tc.Config.Orders.AutoProcessDelayMs)
}

func (s *Orders) request(tc *sched.TickContext, orderID string, trigger world.OrderTrigger, reason string) {
	order := tc.World.FindOrder(orderID)
	if order == nil {
		tc.Publish(event.OrderTransitionRejected{OrderID: orderID, Trigger: trigger, Reason: RejectOrderNotFound})
		return
	}
	if !TransitionOrder(tc, order, trigger) {
		return
	}

	switch trigger {
	case world.TriggerCancel:
		order.CancellationReason = reason
	case world.TriggerProcess:
		armOrderTimer(tc, order.ID, TriggerOrderShip, tc.Config.Orders.AutoShipDelayMs)
	case world.TriggerShip:
		tc.Publish(event.OrderShipped{
			OrderID:   order.ID,
			Customer:  order.Customer,
			Subject:   order.Subject,
			Amount:    order.Total(),
			LineItems: slices.Clone(order.LineItems),
		})
	}
}

func (s *Orders) paid(tc *sched.TickContext, e event.PaymentCollected) {
	p := tc.World.FindPaymentByMessage(e.MessageID)
	if p == nil {
		p = tc.World.FindPayment(e.MessageID)
	}
	if p == nil {
		tc.Logger.Warn("collected payment not found", "tick", tc.Tick, "message_id", e.MessageID)
		return
	}
	order := tc.World.FindOrder(p.OrderID)
	if order == nil {
		tc.Logger.Warn("collected payment has no order", "tick", tc.Tick, "payment_id", p.ID, "order_id", p.OrderID)
		return
	}
	TransitionOrder(tc, order, world.TriggerPay)
}

// TransitionOrder applies trigger to order and publishes the outcome:
// OrderStatusChanged on success, OrderTransitionRejected otherwise.
func TransitionOrder(tc *sched.TickContext, order *world.SalesOrder, trigger world.OrderTrigger) bool {
	from := order.Status
	if err := order.Apply(trigger, tc.SimNow()); err != nil {
		reason := RejectInvalidTransition
		if !errors.Is(err, world.ErrInvalidTransition) {
			reason = err.Error()
		}
		tc.Logger.Debug("order transition rejected", "tick", tc.Tick, "order_id", order.ID, "trigger", trigger, "status", from)
		tc.Publish(event.OrderTransitionRejected{OrderID: order.ID, Trigger: trigger, Reason: reason})
		return false
	}
	tc.Publish(event.OrderStatusChanged{OrderID: order.ID, From: from, To: order.Status})
	return true
}

func armOrderTimer(tc *sched.TickContext, orderID, kind string, delayMs int64) {
	if delayMs <= 0 {
		return
	}
	tc.Publish(event.AddTimer{
		ID:      kind + ":" + orderID,
		DelayMs: delayMs,
		Trigger: world.Trigger{Kind: kind, Data: map[string]string{"order_id": orderID}},
		Source:  "orders",
	})
}
