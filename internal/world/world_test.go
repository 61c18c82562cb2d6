package world

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseAt(t *testing.T) {
	tests := []struct {
		minute int
		want   Phase
	}{
		{0, PhaseNight},
		{359, PhaseNight},
		{360, PhaseMorning},
		{539, PhaseMorning},
		{540, PhaseWork},
		{1019, PhaseWork},
		{1020, PhaseSession},
		{1199, PhaseSession},
		{1200, PhaseWrapup},
		{1439, PhaseWrapup},
		{1440, PhaseNight},
		{-1, PhaseWrapup},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhaseAt(tt.minute), "minute %d", tt.minute)
	}
}

func TestPhaseBoundaries_AscendingAndConsistent(t *testing.T) {
	prev := 0
	for _, b := range PhaseBoundaries {
		assert.Greater(t, b.Minute, prev)
		assert.Equal(t, b.Phase, PhaseAt(b.Minute))
		prev = b.Minute
	}
	assert.Equal(t, MinutesInDay, PhaseBoundaries[len(PhaseBoundaries)-1].Minute)
}

func TestDayAndMinute(t *testing.T) {
	day, minute := DayAndMinute(0)
	assert.Equal(t, int64(0), day)
	assert.Equal(t, 0, minute)

	day, minute = DayAndMinute(SimMsAt(3, 1430) + 59_999)
	assert.Equal(t, int64(3), day)
	assert.Equal(t, 1430, minute)

	day, minute = DayAndMinute(-1)
	assert.Equal(t, int64(-1), day)
	assert.Equal(t, 1439, minute)
}

func TestNewClockAt(t *testing.T) {
	c := NewClockAt(SimMsAt(1, 600))
	assert.Equal(t, int64(1), c.DayIndex)
	assert.Equal(t, 600, c.MinuteOfDay)
	assert.Equal(t, PhaseWork, c.Phase)
}

func TestTimeScale_ClampsNegative(t *testing.T) {
	ts := NewTimeScale(-5)
	assert.Equal(t, 0.0, ts.Multiplier())
	ts.Set(36000)
	assert.Equal(t, 36000.0, ts.Multiplier())
	ts.Set(math.NaN())
	assert.Equal(t, 0.0, ts.Multiplier())
}

func TestMessageStore_Tombstones(t *testing.T) {
	s := NewMessageStore()
	require.True(t, s.Add(Message{ID: "m1", PossibleActions: []Action{ActionRead}}))
	assert.False(t, s.Add(Message{ID: "m1"}), "duplicate id is rejected")

	require.True(t, s.MarkRead("m1", 10))
	require.True(t, s.MarkRead("m1", 20))
	assert.Equal(t, int64(10), *s.Find("m1").ReadAt, "read_at is set once")

	require.True(t, s.MarkSoftDeleted("m1", 30))
	assert.True(t, s.Find("m1").IsDeleted())
	assert.Equal(t, 1, s.Len(), "soft delete keeps the record")
	assert.Empty(t, s.Active())

	require.True(t, s.MarkSpam("m1", 40))
	assert.True(t, s.Find("m1").IsSpam)

	assert.False(t, s.MarkRead("missing", 1))
}

func TestMessageStore_AddClonesInput(t *testing.T) {
	s := NewMessageStore()
	actions := []Action{ActionRead}
	s.Add(Message{ID: "m1", PossibleActions: actions})
	actions[0] = ActionDelete
	assert.Equal(t, ActionRead, s.Find("m1").PossibleActions[0])
}

func TestMessageStore_IsFullCountsActiveOnly(t *testing.T) {
	s := NewMessageStore()
	s.Add(Message{ID: "a"})
	s.Add(Message{ID: "b"})
	assert.True(t, s.IsFull(2))
	s.MarkSoftDeleted("a", 1)
	assert.False(t, s.IsFull(2))
	assert.False(t, s.IsFull(0), "zero capacity is unbounded")
}

func TestMessageStore_HardDeleteAndClear(t *testing.T) {
	s := NewMessageStore()
	s.Add(Message{ID: "a"})
	s.Add(Message{ID: "b"})
	s.Add(Message{ID: "c"})

	assert.True(t, s.HardDelete("b"))
	assert.False(t, s.HardDelete("b"))
	assert.Nil(t, s.Find("b"))

	var ids []string
	for _, m := range s.All() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	assert.Equal(t, 2, s.Clear())
	assert.Equal(t, 0, s.Len())
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		trigger OrderTrigger
		want    OrderStatus
		wantErr bool
	}{
		{OrderNew, TriggerProcess, OrderActive, false},
		{OrderActive, TriggerShip, OrderShipped, false},
		{OrderShipped, TriggerPay, OrderPaid, false},
		{OrderShipped, TriggerFail, OrderFailed, false},
		{OrderShipped, TriggerClose, OrderClosed, false},
		{OrderPaid, TriggerClose, OrderClosed, false},
		{OrderNew, TriggerCancel, OrderCancelled, false},
		{OrderActive, TriggerCancel, OrderCancelled, false},
		{OrderNew, TriggerShip, OrderNew, true},
		{OrderShipped, TriggerCancel, OrderShipped, true},
		{OrderClosed, TriggerProcess, OrderClosed, true},
		{OrderCancelled, TriggerCancel, OrderCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.trigger), func(t *testing.T) {
			got, err := NextStatus(tt.from, tt.trigger)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSalesOrder_ApplyStampsOnce(t *testing.T) {
	o := &SalesOrder{
		ID:     "o1",
		Status: OrderNew,
		LineItems: []LineItem{
			{Quantity: 2, Price: decimal.RequireFromString("12.50"), Status: LineItemNew},
		},
	}
	require.NoError(t, o.Apply(TriggerProcess, 100))
	require.NoError(t, o.Apply(TriggerShip, 200))
	assert.Equal(t, OrderShipped, o.Status)
	assert.Equal(t, int64(100), *o.ProcessedAt)
	assert.Equal(t, int64(200), *o.ShippedAt)
	assert.Equal(t, LineItemShipped, o.LineItems[0].Status)

	err := o.Apply(TriggerProcess, 300)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderShipped, o.Status, "invalid transition leaves the order untouched")
	assert.True(t, decimal.RequireFromString("25").Equal(o.Total()))
}

func TestPlayer_EnergyClamp(t *testing.T) {
	p := NewPlayer()
	assert.Equal(t, 0.0, p.AddEnergy(10))
	assert.Equal(t, -100.0, p.AddEnergy(-250))
	assert.Equal(t, 0.0, p.Stats.Energy)

	p.AdjustSleepStacks(9)
	assert.Equal(t, MaxSleepStacks, p.Stats.ExhaustedSleepStacks)
	p.AdjustSleepStacks(-9)
	assert.Equal(t, 0, p.Stats.ExhaustedSleepStacks)
}

func TestTimerStore_DueOrderIsDeterministic(t *testing.T) {
	s := NewTimerStore()
	s.Put(Timer{ID: "b", ExpiresAt: 10})
	s.Put(Timer{ID: "a", ExpiresAt: 10})
	s.Put(Timer{ID: "c", ExpiresAt: 5})
	s.Put(Timer{ID: "d", ExpiresAt: 50})

	var ids []string
	for _, tm := range s.Due(10) {
		ids = append(ids, tm.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)

	s.Put(Timer{ID: "d", ExpiresAt: 1})
	assert.Equal(t, 4, s.Len(), "put overwrites by id")
	assert.Equal(t, int64(1), s.Get("d").ExpiresAt)

	assert.True(t, s.Remove("d"))
	assert.False(t, s.Remove("d"))
}

func TestWorld_SnapshotIsACopy(t *testing.T) {
	w := New()
	w.Messages.Add(Message{ID: "m1"})
	w.AddOrder(&SalesOrder{ID: "o1", Status: OrderNew})

	snap := w.Snapshot()
	w.Messages.MarkRead("m1", 5)
	w.Orders[0].Status = OrderActive

	assert.Nil(t, snap.Messages[0].ReadAt)
	assert.Equal(t, OrderNew, snap.Orders[0].Status)
	assert.False(t, w.AddOrder(&SalesOrder{ID: "o1"}))
}
