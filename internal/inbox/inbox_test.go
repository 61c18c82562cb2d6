package inbox

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/testutil"
	"github.com/roach88/inboxsim/internal/world"
)

func setup(t *testing.T, msgs ...world.Message) (*sched.TickContext, *System, *testutil.Recorder) {
	t.Helper()
	tc := testutil.NewTickContext()
	for _, m := range msgs {
		require.True(t, tc.World.Messages.Add(m))
	}
	s := NewSystem()
	require.NoError(t, s.Init(tc.Bus))
	return tc, s, testutil.Record(tc.Bus)
}

func message(id string, typ world.MessageType, actions ...world.Action) world.Message {
	return world.Message{ID: id, Type: typ, Subject: "subject " + id, PossibleActions: actions}
}

func request(tc *sched.TickContext, id string, action world.Action) {
	tc.Publish(event.MessageActionRequested{MessageID: id, Action: action, Source: "test"})
}

func TestInbox_ReadThenArchive(t *testing.T) {
	tc, s, rec := setup(t, message("m1", world.MessageSystem, world.ActionRead, world.ActionArchive))

	request(tc, "m1", world.ActionRead)
	require.NoError(t, s.Run(tc))

	m := tc.World.Messages.Find("m1")
	require.NotNil(t, m.ReadAt)
	assert.Equal(t, 98.0, tc.World.Player.Stats.Energy)
	tasks := testutil.Of[event.TaskFinished](rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, 6, tasks[0].XPGain)
	assert.Equal(t, 2.0, tasks[0].EnergyCost)
	assert.Equal(t, 2, tasks[0].TimeCostMinutes)

	request(tc, "m1", world.ActionArchive)
	require.NoError(t, s.Run(tc))

	assert.NotNil(t, m.DeletedAt)
	assert.Zero(t, rec.Count(event.KindMessageActionRejected))
	assert.Equal(t, 8, tc.World.Player.Stats.XP)
	require.NotNil(t, tc.World.LastAction)
	assert.True(t, tc.World.LastAction.Success)
	assert.Equal(t, world.ActionArchive, tc.World.LastAction.Action)
}

func TestInbox_EnergyGate(t *testing.T) {
	tc, s, rec := setup(t, message("m1", world.MessagePayment, world.ActionCollect))
	tc.World.Payments = append(tc.World.Payments, &world.Payment{ID: "o1", MessageID: "m1", Status: world.PaymentNew})
	tc.World.Player.Stats.Energy = 1

	request(tc, "m1", world.ActionCollect)
	require.NoError(t, s.Run(tc))

	rejections := testutil.Of[event.MessageActionRejected](rec)
	require.Len(t, rejections, 1)
	assert.Equal(t, "m1", rejections[0].MessageID)
	assert.Equal(t, world.ActionCollect, rejections[0].Action)
	assert.Equal(t, string(ReasonNotEnoughEnergy), rejections[0].Reason)
	assert.NotEmpty(t, rejections[0].Message)

	m := tc.World.Messages.Find("m1")
	assert.Nil(t, m.DeletedAt)
	assert.Equal(t, 1.0, tc.World.Player.Stats.Energy)
	assert.Zero(t, rec.Count(event.KindPaymentCollected))
	assert.Zero(t, rec.Count(event.KindTaskFinished))
	require.NotNil(t, tc.World.LastAction)
	assert.False(t, tc.World.LastAction.Success)
	assert.Equal(t, string(ReasonNotEnoughEnergy), tc.World.LastAction.Reason)
}

func TestValidate_Reasons(t *testing.T) {
	deleted := int64(5)
	read := int64(3)

	tests := []struct {
		name   string
		msg    *world.Message
		pay    *world.Payment
		player func(*world.Player)
		req    Request
		want   Reason
	}{
		{
			name: "missing message",
			req:  Request{MessageID: "nope", Action: world.ActionRead},
			want: ReasonMessageNotFound,
		},
		{
			name: "deleted message",
			msg:  &world.Message{ID: "m", PossibleActions: []world.Action{world.ActionRead}, DeletedAt: &deleted},
			req:  Request{MessageID: "m", Action: world.ActionRead},
			want: ReasonMessageDeleted,
		},
		{
			name: "action not offered",
			msg:  &world.Message{ID: "m", PossibleActions: []world.Action{world.ActionRead}},
			req:  Request{MessageID: "m", Action: world.ActionAccept},
			want: ReasonActionNotAllowed,
		},
		{
			name: "unsupported action",
			msg:  &world.Message{ID: "m", PossibleActions: []world.Action{"reply"}},
			req:  Request{MessageID: "m", Action: "reply"},
			want: ReasonActionNotAllowed,
		},
		{
			name: "already read",
			msg:  &world.Message{ID: "m", PossibleActions: []world.Action{world.ActionRead}, ReadAt: &read},
			req:  Request{MessageID: "m", Action: world.ActionRead},
			want: ReasonAlreadyRead,
		},
		{
			name: "collect on non-payment message",
			msg:  &world.Message{ID: "m", Type: world.MessageCustomerPO, PossibleActions: []world.Action{world.ActionCollect}},
			req:  Request{MessageID: "m", Action: world.ActionCollect},
			want: ReasonNotPaymentMessage,
		},
		{
			name: "collect without payment record",
			msg:  &world.Message{ID: "m", Type: world.MessagePayment, PossibleActions: []world.Action{world.ActionCollect}},
			req:  Request{MessageID: "m", Action: world.ActionCollect},
			want: ReasonActionNotAllowed,
		},
		{
			name: "player sleeping",
			msg:  &world.Message{ID: "m", PossibleActions: []world.Action{world.ActionRead}},
			player: func(p *world.Player) {
				p.Status = world.PlayerSleeping
				p.Stats.Energy = 0
			},
			req:  Request{MessageID: "m", Action: world.ActionRead},
			want: ReasonPlayerSleeping,
		},
		{
			name:   "not enough energy",
			msg:    &world.Message{ID: "m", PossibleActions: []world.Action{world.ActionAccept}},
			player: func(p *world.Player) { p.Stats.Energy = 9.5 },
			req:    Request{MessageID: "m", Action: world.ActionAccept},
			want:   ReasonNotEnoughEnergy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTickContext()
			if tt.msg != nil {
				require.True(t, tc.World.Messages.Add(*tt.msg))
			}
			if tt.pay != nil {
				tc.World.Payments = append(tc.World.Payments, tt.pay)
			}
			if tt.player != nil {
				tt.player(&tc.World.Player)
			}
			before := tc.World.Snapshot()

			_, rej := Validate(tc.World, tc.Config.Inbox.Costs, tt.req)
			require.NotNil(t, rej)
			assert.Equal(t, tt.want, rej.Reason)
			assert.Contains(t, rej.Error(), string(tt.want))

			_, again := Validate(tc.World, tc.Config.Inbox.Costs, tt.req)
			assert.Equal(t, rej, again, "validation is repeatable")
			assert.Equal(t, before, tc.World.Snapshot(), "validation never mutates")
		})
	}
}

func TestValidate_ExactEnergyPasses(t *testing.T) {
	tc := testutil.NewTickContext()
	require.True(t, tc.World.Messages.Add(message("m", world.MessageSystem, world.ActionRead)))
	tc.World.Player.Stats.Energy = 2

	approval, rej := Validate(tc.World, tc.Config.Inbox.Costs, Request{MessageID: "m", Action: world.ActionRead})
	require.Nil(t, rej)
	assert.Equal(t, "m", approval.Message.ID)
	assert.Equal(t, 2.0, approval.Cost.Energy)
}

func TestValidate_EnergyMessageShowsFraction(t *testing.T) {
	tc := testutil.NewTickContext()
	require.True(t, tc.World.Messages.Add(message("m", world.MessageSystem, world.ActionRead)))
	tc.World.Player.Stats.Energy = 1.6

	_, rej := Validate(tc.World, tc.Config.Inbox.Costs, Request{MessageID: "m", Action: world.ActionRead})
	require.NotNil(t, rej)
	assert.Equal(t, ReasonNotEnoughEnergy, rej.Reason)
	assert.Equal(t, "read needs 2 energy, you have 1.6", rej.Message)
}

func TestInbox_FailedReadLeavesMessageUntouched(t *testing.T) {
	tc, s, _ := setup(t, message("m1", world.MessageSystem, world.ActionRead))
	tc.World.Player.Status = world.PlayerSleeping

	request(tc, "m1", world.ActionRead)
	require.NoError(t, s.Run(tc))

	m := tc.World.Messages.Find("m1")
	assert.Nil(t, m.ReadAt)
	assert.Equal(t, 100.0, tc.World.Player.Stats.Energy)
	assert.Equal(t, string(ReasonPlayerSleeping), tc.World.LastAction.Reason)
}

func TestInbox_AcceptPublishesOrderAccepted(t *testing.T) {
	msg := message("po1", world.MessageCustomerPO, world.ActionRead, world.ActionAccept)
	msg.LineItems = []world.LineItem{{ProductID: "widget", Quantity: 2, Price: decimal.NewFromInt(5)}}
	tc, s, rec := setup(t, msg)

	request(tc, "po1", world.ActionAccept)
	require.NoError(t, s.Run(tc))

	accepted := testutil.Of[event.OrderAccepted](rec)
	require.Len(t, accepted, 1)
	assert.Equal(t, "po1", accepted[0].MessageID)
	assert.Len(t, accepted[0].Message.LineItems, 1)
	assert.Nil(t, accepted[0].Message.DeletedAt, "snapshot is taken before the tombstone")

	assert.True(t, tc.World.Messages.Find("po1").IsDeleted())
	assert.Equal(t, 90.0, tc.World.Player.Stats.Energy)
	assert.Equal(t, 25, tc.World.Player.Stats.XP)

	assert.Equal(t, []event.Kind{
		event.KindMessageActionRequested,
		event.KindOrderAccepted,
		event.KindTaskFinished,
	}, rec.Kinds())
}

func TestInbox_CollectPublishesPaymentCollected(t *testing.T) {
	tc, s, rec := setup(t, message("pm1", world.MessagePayment, world.ActionRead, world.ActionCollect))
	tc.World.Payments = append(tc.World.Payments, &world.Payment{ID: "o1", MessageID: "pm1", Status: world.PaymentNew})

	request(tc, "pm1", world.ActionCollect)
	require.NoError(t, s.Run(tc))

	collected := testutil.Of[event.PaymentCollected](rec)
	require.Len(t, collected, 1)
	assert.Equal(t, "pm1", collected[0].MessageID)

	tasks := testutil.Of[event.TaskFinished](rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "o1", tasks[0].Refs["payment_id"])
	assert.Equal(t, 85.0, tc.World.Player.Stats.Energy)

	request(tc, "pm1", world.ActionCollect)
	require.NoError(t, s.Run(tc))
	assert.Len(t, testutil.Of[event.PaymentCollected](rec), 1, "a collected message cannot be collected again")
	assert.Equal(t, string(ReasonMessageDeleted), tc.World.LastAction.Reason)
}

func TestInbox_SpamMarksSpam(t *testing.T) {
	tc, s, _ := setup(t, message("s1", world.MessageSpam, world.ActionSpam, world.ActionDelete))

	request(tc, "s1", world.ActionSpam)
	require.NoError(t, s.Run(tc))

	m := tc.World.Messages.Find("s1")
	assert.NotNil(t, m.SpamAt)
	assert.True(t, m.IsSpam)
	assert.False(t, m.IsDeleted())
}

func TestInbox_LockRejectsWithoutGuards(t *testing.T) {
	tc, s, rec := setup(t, message("m1", world.MessageSystem, world.ActionRead))

	tc.Publish(event.InboxLockRequested{Reason: "incapacitated"})
	request(tc, "m1", world.ActionRead)
	request(tc, "missing", world.ActionRead)
	require.NoError(t, s.Run(tc))

	assert.Equal(t, StateLocked, s.State())
	rejections := testutil.Of[event.MessageActionRejected](rec)
	require.Len(t, rejections, 2)
	for _, r := range rejections {
		assert.Equal(t, string(ReasonInboxLocked), r.Reason)
	}
	assert.Nil(t, tc.World.Messages.Find("m1").ReadAt)

	tc.Publish(event.InboxUnlockRequested{})
	request(tc, "m1", world.ActionRead)
	require.NoError(t, s.Run(tc))

	assert.Equal(t, StateIdle, s.State())
	assert.NotNil(t, tc.World.Messages.Find("m1").ReadAt)
	assert.Equal(t, []event.InboxStateChanged{
		{From: "idle", To: "locked"},
		{From: "locked", To: "idle"},
	}, testutil.Of[event.InboxStateChanged](rec))
}

func TestInbox_Reset(t *testing.T) {
	tc, s, rec := setup(t,
		message("a", world.MessageSystem, world.ActionRead),
		message("b", world.MessageSystem, world.ActionRead),
	)

	tc.Publish(event.InboxLockRequested{})
	tc.Publish(event.InboxResetRequested{Source: "test"})
	require.NoError(t, s.Run(tc))

	assert.Equal(t, []event.InboxResetRejected{{State: "locked"}}, testutil.Of[event.InboxResetRejected](rec))
	assert.Equal(t, 2, tc.World.Messages.Len())

	tc.Publish(event.InboxUnlockRequested{})
	tc.Publish(event.InboxResetRequested{Source: "test"})
	require.NoError(t, s.Run(tc))

	assert.Equal(t, []event.InboxResetCompleted{{Removed: 2}}, testutil.Of[event.InboxResetCompleted](rec))
	assert.Zero(t, tc.World.Messages.Len())
}

func TestInbox_HardDelete(t *testing.T) {
	tc, s, rec := setup(t, message("a", world.MessageSystem, world.ActionRead))

	tc.Publish(event.MessageHardDeleteRequested{MessageID: "a"})
	tc.Publish(event.MessageHardDeleteRequested{MessageID: "missing"})
	require.NoError(t, s.Run(tc))

	assert.Nil(t, tc.World.Messages.Find("a"))
	assert.Equal(t, []event.MessageHardDeleted{{MessageID: "a"}}, testutil.Of[event.MessageHardDeleted](rec))
}

func TestTransition_IsPure(t *testing.T) {
	tc := testutil.NewTickContext()
	require.True(t, tc.World.Messages.Add(message("m", world.MessageSystem, world.ActionRead)))
	env := Env{World: tc.World, Costs: tc.Config.Inbox.Costs, NowMs: 42}
	before := tc.World.Snapshot()

	cmd := ActionCommand{Request{MessageID: "m", Action: world.ActionRead, Source: "ui"}}
	next, effects := Transition(StateIdle, cmd, env)

	assert.Equal(t, StateIdle, next)
	assert.Equal(t, before, tc.World.Snapshot())
	require.Len(t, effects, 5)
	assert.Equal(t, MarkRead{"m"}, effects[0])
	assert.Equal(t, SpendEnergy{2}, effects[1])
	assert.Equal(t, GrantXP{6}, effects[2])
	assert.IsType(t, Publish{}, effects[3])
	assert.Equal(t, RecordAudit{world.LastAction{
		MessageID: "m", Action: world.ActionRead, Source: "ui", Success: true, AtMs: 42,
	}}, effects[4])

	next, effects = Transition(StateLocked, LockCommand{}, env)
	assert.Equal(t, StateLocked, next)
	assert.Empty(t, effects)
}
