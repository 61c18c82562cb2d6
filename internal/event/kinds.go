package event

// Kind is the tag events are discriminated and subscribed by.
type Kind string

// Clock and scheduling.
const (
	KindTick             Kind = "Tick"
	KindTock             Kind = "Tock"
	KindSimTimeAdvanced  Kind = "SimTimeAdvanced"
	KindDayPhaseChanged  Kind = "DayPhaseChanged"
	KindDayChanged       Kind = "DayChanged"
	KindSetTimeScale     Kind = "SetTimeScale"
	KindTimeScaleChanged Kind = "TimeScaleChanged"
	KindSetPaused        Kind = "SetPaused"
	KindPauseChanged     Kind = "PauseChanged"
)

// Inbox.
const (
	KindNewMessageReceived         Kind = "NewMessageReceived"
	KindMessageAdmitted            Kind = "MessageAdmitted"
	KindMessageDropped             Kind = "MessageDropped"
	KindMessageActionRequested     Kind = "MessageActionRequested"
	KindMessageActionRejected      Kind = "MessageActionRejected"
	KindMessageHardDeleteRequested Kind = "MessageHardDeleteRequested"
	KindMessageHardDeleted         Kind = "MessageHardDeleted"
	KindInboxLockRequested         Kind = "InboxLockRequested"
	KindInboxUnlockRequested       Kind = "InboxUnlockRequested"
	KindInboxStateChanged          Kind = "InboxStateChanged"
	KindInboxResetRequested        Kind = "InboxResetRequested"
	KindInboxResetCompleted        Kind = "InboxResetCompleted"
	KindInboxResetRejected         Kind = "InboxResetRejected"
)

// Orders and payments.
const (
	KindOrderAccepted           Kind = "OrderAccepted"
	KindOrderCreated            Kind = "OrderCreated"
	KindOrderProcessRequested   Kind = "OrderProcessRequested"
	KindOrderShipRequested      Kind = "OrderShipRequested"
	KindOrderCloseRequested     Kind = "OrderCloseRequested"
	KindOrderCancelRequested    Kind = "OrderCancelRequested"
	KindOrderStatusChanged      Kind = "OrderStatusChanged"
	KindOrderTransitionRejected Kind = "OrderTransitionRejected"
	KindOrderShipped            Kind = "OrderShipped"
	KindPaymentReceived         Kind = "PaymentReceived"
	KindPaymentFailed           Kind = "PaymentFailed"
	KindPaymentCollected        Kind = "PaymentCollected"
)

// Player.
const (
	KindGoToSleep             Kind = "GoToSleep"
	KindSleepStarted          Kind = "SleepStarted"
	KindSleepFinished         Kind = "SleepFinished"
	KindSleepInterruptRequest Kind = "SleepInterruptRequested"
	KindSleepInterrupted      Kind = "SleepInterrupted"
	KindEnergyDepleted        Kind = "EnergyDepleted"
	KindTaskFinished          Kind = "TaskFinished"
)

// Timers.
const (
	KindAddTimer     Kind = "AddTimer"
	KindRemoveTimer  Kind = "RemoveTimer"
	KindTimerExpired Kind = "TimerExpired"
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindTick, KindTock, KindSimTimeAdvanced, KindDayPhaseChanged, KindDayChanged,
	KindSetTimeScale, KindTimeScaleChanged, KindSetPaused, KindPauseChanged,
	KindNewMessageReceived, KindMessageAdmitted, KindMessageDropped,
	KindMessageActionRequested, KindMessageActionRejected,
	KindMessageHardDeleteRequested, KindMessageHardDeleted,
	KindInboxLockRequested, KindInboxUnlockRequested, KindInboxStateChanged,
	KindInboxResetRequested, KindInboxResetCompleted, KindInboxResetRejected,
	KindOrderAccepted, KindOrderCreated, KindOrderProcessRequested,
	KindOrderShipRequested, KindOrderCloseRequested, KindOrderCancelRequested,
	KindOrderStatusChanged, KindOrderTransitionRejected, KindOrderShipped,
	KindPaymentReceived, KindPaymentFailed, KindPaymentCollected,
	KindGoToSleep, KindSleepStarted, KindSleepFinished,
	KindSleepInterruptRequest, KindSleepInterrupted, KindEnergyDepleted,
	KindTaskFinished,
	KindAddTimer, KindRemoveTimer, KindTimerExpired,
}

// IsKnown reports whether k is one of the declared kinds.
func IsKnown(k Kind) bool {
	for _, known := range Kinds {
		if known == k {
			return true
		}
	}
	return false
}
