package systems

import (
	"fmt"
	"slices"

	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/lineitem"
	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

// PurchaseOrderActions are the actions offered on a rolled purchase order.
var PurchaseOrderActions = []world.Action{
	world.ActionRead,
	world.ActionAccept,
	world.ActionArchive,
	world.ActionDelete,
}

// Roller produces customer purchase-order messages during the configured
// phases. Every whole sim-minute that passes rolls roller.chance_per_minute
// once; fractions of a minute carry over to the next tick.
type Roller struct {
	carryMs sched.Storage[int64]
}

func NewRoller() *Roller { return &Roller{} }

func (s *Roller) Name() string          { return "roller" }
func (s *Roller) Init(*event.Bus) error { return nil }

func (s *Roller) Run(tc *sched.TickContext) error {
	cfg := tc.Config.Roller
	simDt := tc.SimDelta()
	if !cfg.Enabled || tc.Paused() || simDt <= 0 {
		return nil
	}

	carry := s.carryMs.Get(func() int64 { return 0 })
	if !slices.Contains(cfg.Phases, tc.World.Clock.Phase) {
		*carry = 0
		return nil
	}

	*carry += simDt
	for *carry >= world.MinuteMs {
		*carry -= world.MinuteMs
		if rng.Chance(tc.RNG, cfg.ChancePerMinute) {
			tc.Publish(event.NewMessageReceived{Message: s.roll(tc)})
		}
	}
	return nil
}

func (s *Roller) roll(tc *sched.TickContext) world.Message {
	cfg := tc.Config.Roller
	c := tc.World.Clock

	customer := "Customer"
	if n := len(cfg.Customers); n > 0 {
		customer = cfg.Customers[min(int(tc.RNG()*float64(n)), n-1)]
	}

	items := lineitem.Generate(cfg.Strategy, tc.Config.Products(), tc.RNG)
	for i := range items {
		items[i].Type = world.LineItemTypeCustomerPO
		items[i].Status = world.LineItemNew
	}

	id := tc.IDs.NewID()
	tc.Logger.Debug("purchase order rolled", "tick", tc.Tick, "message_id", id, "customer", customer, "items", len(items))

	return world.Message{
		ID:              id,
		Type:            world.MessageCustomerPO,
		Subject:         fmt.Sprintf("Purchase order from %s", customer),
		Body:            fmt.Sprintf("%s would like to order %d item(s). Total %s.", customer, len(items), world.SumLineItems(items).StringFixed(2)),
		Author:          customer,
		Priority:        world.PriorityNormal,
		SimNowMs:        c.SimNowMs,
		DayIndex:        c.DayIndex,
		MinuteOfDay:     c.MinuteOfDay,
		Timestamp:       tc.Now,
		PossibleActions: slices.Clone(PurchaseOrderActions),
		Tags:            []string{"customer-po"},
		LineItems:       items,
	}
}
