package event

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/inboxsim/internal/world"
)

// Tick opens every engine tick.
type Tick struct {
	Tick        uint64 `json:"tick"`
	RealDeltaMs int64  `json:"real_delta_ms"`
}

// Tock closes every engine tick.
type Tock struct {
	Tick     uint64 `json:"tick"`
	SimNowMs int64  `json:"sim_now_ms"`
}

// SimTimeAdvanced is the clock heartbeat, published once per running tick.
type SimTimeAdvanced struct {
	RealDeltaMs int64   `json:"real_delta_ms"`
	SimDeltaMs  int64   `json:"sim_delta_ms"`
	Multiplier  float64 `json:"multiplier"`
	SimNowMs    int64   `json:"sim_now_ms"`
	DayIndex    int64   `json:"day_index"`
	MinuteOfDay int     `json:"minute_of_day"`
}

// DayPhaseChanged is published for every phase boundary crossed.
type DayPhaseChanged struct {
	DayIndex int64       `json:"day_index"`
	From     world.Phase `json:"from"`
	To       world.Phase `json:"to"`
}

// DayChanged is published for every midnight crossed.
type DayChanged struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// SetTimeScale requests a new time-scale multiplier.
type SetTimeScale struct {
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Source     string  `json:"source,omitempty" yaml:"source"`
}

// TimeScaleChanged confirms an applied multiplier.
type TimeScaleChanged struct {
	Multiplier float64 `json:"multiplier"`
	Previous   float64 `json:"previous"`
}

// SetPaused requests pausing or resuming the clock.
type SetPaused struct {
	Paused bool `json:"paused" yaml:"paused"`
}

// PauseChanged confirms an applied pause flag.
type PauseChanged struct {
	Paused bool `json:"paused"`
}

// NewMessageReceived carries a freshly produced inbox message.
type NewMessageReceived struct {
	world.Message `yaml:",inline"`
}

// MessageAdmitted confirms a message entered the store.
type MessageAdmitted struct {
	MessageID string            `json:"message_id"`
	Type      world.MessageType `json:"type"`
}

// MessageDropped reports a message that was not admitted.
type MessageDropped struct {
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
}

// MessageActionRequested asks the inbox to apply action to a message.
type MessageActionRequested struct {
	MessageID string       `json:"message_id" yaml:"message_id"`
	Action    world.Action `json:"action" yaml:"action"`
	Source    string       `json:"source" yaml:"source"`
}

// MessageActionRejected reports a refused action. Reason is the code,
// Message is human-readable.
type MessageActionRejected struct {
	MessageID string       `json:"message_id"`
	Action    world.Action `json:"action"`
	Reason    string       `json:"reason"`
	Message   string       `json:"message"`
}

// MessageHardDeleteRequested asks for physical removal of a message.
type MessageHardDeleteRequested struct {
	MessageID string `json:"message_id" yaml:"message_id"`
}

// MessageHardDeleted confirms physical removal.
type MessageHardDeleted struct {
	MessageID string `json:"message_id"`
}

// InboxLockRequested locks the inbox against all actions.
type InboxLockRequested struct {
	Reason string `json:"reason,omitempty" yaml:"reason"`
}

// InboxUnlockRequested returns a locked inbox to idle.
type InboxUnlockRequested struct{}

// InboxStateChanged reports an inbox state machine transition.
type InboxStateChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// InboxResetRequested asks to clear every message.
type InboxResetRequested struct {
	Source string `json:"source,omitempty" yaml:"source"`
}

// InboxResetCompleted confirms a reset.
type InboxResetCompleted struct {
	Removed int `json:"removed"`
}

// InboxResetRejected reports a reset refused outside the idle state.
type InboxResetRejected struct {
	State string `json:"state"`
}

// OrderAccepted is published when a purchase order message is accepted.
type OrderAccepted struct {
	MessageID string        `json:"message_id"`
	Message   world.Message `json:"message"`
}

// PaymentCollected is published when a payment message is collected.
type PaymentCollected struct {
	MessageID string        `json:"message_id"`
	Message   world.Message `json:"message"`
}

// OrderCreated confirms a sales order spawned from an accepted message.
type OrderCreated struct {
	OrderID   string          `json:"order_id"`
	MessageID string          `json:"message_id"`
	Customer  string          `json:"customer"`
	Items     int             `json:"items"`
	Total     decimal.Decimal `json:"total"`
}

// OrderProcessRequested moves an order from new to active.
type OrderProcessRequested struct {
	OrderID string `json:"order_id" yaml:"order_id"`
}

// OrderShipRequested moves an order from active to shipped.
type OrderShipRequested struct {
	OrderID string `json:"order_id" yaml:"order_id"`
}

// OrderCloseRequested closes a shipped or paid order.
type OrderCloseRequested struct {
	OrderID string `json:"order_id" yaml:"order_id"`
}

// OrderCancelRequested cancels a new or active order.
type OrderCancelRequested struct {
	OrderID string `json:"order_id" yaml:"order_id"`
	Reason  string `json:"reason" yaml:"reason"`
}

// OrderStatusChanged reports an applied order transition.
type OrderStatusChanged struct {
	OrderID string            `json:"order_id"`
	From    world.OrderStatus `json:"from"`
	To      world.OrderStatus `json:"to"`
}

// OrderTransitionRejected reports an order request that did not apply.
type OrderTransitionRejected struct {
	OrderID string             `json:"order_id"`
	Trigger world.OrderTrigger `json:"trigger"`
	Reason  string             `json:"reason"`
}

// OrderShipped is published when an order ships; it schedules payment.
type OrderShipped struct {
	OrderID   string           `json:"order_id" yaml:"order_id"`
	Customer  string           `json:"customer" yaml:"customer"`
	Subject   string           `json:"subject" yaml:"subject"`
	Amount    decimal.Decimal  `json:"amount" yaml:"amount"`
	LineItems []world.LineItem `json:"line_items,omitempty" yaml:"line_items"`
}

// PaymentReceived is published when a scheduled payment succeeds.
type PaymentReceived struct {
	OrderID   string          `json:"order_id"`
	MessageID string          `json:"message_id"`
	Customer  string          `json:"customer"`
	Subject   string          `json:"subject"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentFailed is published when a scheduled payment fails.
type PaymentFailed struct {
	OrderID  string          `json:"order_id"`
	Customer string          `json:"customer"`
	Subject  string          `json:"subject"`
	Amount   decimal.Decimal `json:"amount"`
}

// SleepReason says why the player goes to sleep.
type SleepReason string

const (
	SleepExhausted SleepReason = "exhausted"
	SleepPlayer    SleepReason = "player"
	SleepAuto      SleepReason = "auto"
)

// GoToSleep asks the sleep system to put the player to sleep.
type GoToSleep struct {
	Reason SleepReason `json:"reason" yaml:"reason"`
}

// SleepStarted confirms the player fell asleep.
type SleepStarted struct {
	Reason     SleepReason `json:"reason"`
	Energy     float64     `json:"energy"`
	WakeTarget float64     `json:"wake_target"`
	Stacks     int         `json:"stacks"`
}

// SleepFinished is published when the wake target is reached.
type SleepFinished struct {
	Before       float64 `json:"before"`
	After        float64 `json:"after"`
	MinutesSlept float64 `json:"minutes_slept"`
	Bonus        float64 `json:"bonus"`
}

// SleepInterruptRequested wakes the player immediately.
type SleepInterruptRequested struct {
	Source string `json:"source,omitempty" yaml:"source"`
}

// SleepInterrupted confirms an interrupted sleep.
type SleepInterrupted struct {
	Before       float64 `json:"before"`
	After        float64 `json:"after"`
	MinutesSlept float64 `json:"minutes_slept"`
}

// EnergyDepleted is published when energy first reaches zero.
type EnergyDepleted struct {
	SimNowMs int64 `json:"sim_now_ms"`
}

// TaskFinished reports a completed player task for progression.
type TaskFinished struct {
	TaskID          string            `json:"task_id"`
	TaskKind        string            `json:"kind"`
	Source          string            `json:"source"`
	EnergyCost      float64           `json:"energy_cost"`
	TimeCostMinutes int               `json:"time_cost_minutes"`
	XPGain          int               `json:"xp_gain"`
	Refs            map[string]string `json:"refs,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
}

// AddTimer arms a timer. Re-adding an id overwrites it.
type AddTimer struct {
	ID      string        `json:"id,omitempty" yaml:"id"`
	DelayMs int64         `json:"delay_ms" yaml:"delay_ms"`
	Trigger world.Trigger `json:"trigger" yaml:"trigger"`
	Repeat  *world.Repeat `json:"repeat,omitempty" yaml:"repeat"`
	Source  string        `json:"source,omitempty" yaml:"source"`
}

// RemoveTimer disarms a timer. Absent ids are a no-op.
type RemoveTimer struct {
	TimerID string `json:"timer_id" yaml:"timer_id"`
}

// TimerExpired is published each time a timer fires.
type TimerExpired struct {
	Timer world.Timer `json:"timer"`
}

func (Tick) Kind() Kind                       { return KindTick }
func (Tock) Kind() Kind                       { return KindTock }
func (SimTimeAdvanced) Kind() Kind            { return KindSimTimeAdvanced }
func (DayPhaseChanged) Kind() Kind            { return KindDayPhaseChanged }
func (DayChanged) Kind() Kind                 { return KindDayChanged }
func (SetTimeScale) Kind() Kind               { return KindSetTimeScale }
func (TimeScaleChanged) Kind() Kind           { return KindTimeScaleChanged }
func (SetPaused) Kind() Kind                  { return KindSetPaused }
func (PauseChanged) Kind() Kind               { return KindPauseChanged }
func (NewMessageReceived) Kind() Kind         { return KindNewMessageReceived }
func (MessageAdmitted) Kind() Kind            { return KindMessageAdmitted }
func (MessageDropped) Kind() Kind             { return KindMessageDropped }
func (MessageActionRequested) Kind() Kind     { return KindMessageActionRequested }
func (MessageActionRejected) Kind() Kind      { return KindMessageActionRejected }
func (MessageHardDeleteRequested) Kind() Kind { return KindMessageHardDeleteRequested }
func (MessageHardDeleted) Kind() Kind         { return KindMessageHardDeleted }
func (InboxLockRequested) Kind() Kind         { return KindInboxLockRequested }
func (InboxUnlockRequested) Kind() Kind       { return KindInboxUnlockRequested }
func (InboxStateChanged) Kind() Kind          { return KindInboxStateChanged }
func (InboxResetRequested) Kind() Kind        { return KindInboxResetRequested }
func (InboxResetCompleted) Kind() Kind        { return KindInboxResetCompleted }
func (InboxResetRejected) Kind() Kind         { return KindInboxResetRejected }
func (OrderAccepted) Kind() Kind              { return KindOrderAccepted }
func (PaymentCollected) Kind() Kind           { return KindPaymentCollected }
func (OrderCreated) Kind() Kind               { return KindOrderCreated }
func (OrderProcessRequested) Kind() Kind      { return KindOrderProcessRequested }
func (OrderShipRequested) Kind() Kind         { return KindOrderShipRequested }
func (OrderCloseRequested) Kind() Kind        { return KindOrderCloseRequested }
func (OrderCancelRequested) Kind() Kind       { return KindOrderCancelRequested }
func (OrderStatusChanged) Kind() Kind         { return KindOrderStatusChanged }
func (OrderTransitionRejected) Kind() Kind    { return KindOrderTransitionRejected }
func (OrderShipped) Kind() Kind               { return KindOrderShipped }
func (PaymentReceived) Kind() Kind            { return KindPaymentReceived }
func (PaymentFailed) Kind() Kind              { return KindPaymentFailed }
func (GoToSleep) Kind() Kind                  { return KindGoToSleep }
func (SleepStarted) Kind() Kind               { return KindSleepStarted }
func (SleepFinished) Kind() Kind              { return KindSleepFinished }
func (SleepInterruptRequested) Kind() Kind    { return KindSleepInterruptRequest }
func (SleepInterrupted) Kind() Kind           { return KindSleepInterrupted }
func (EnergyDepleted) Kind() Kind             { return KindEnergyDepleted }
func (TaskFinished) Kind() Kind               { return KindTaskFinished }
func (AddTimer) Kind() Kind                   { return KindAddTimer }
func (RemoveTimer) Kind() Kind                { return KindRemoveTimer }
func (TimerExpired) Kind() Kind               { return KindTimerExpired }
