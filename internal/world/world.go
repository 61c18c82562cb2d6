package world

// LastAction is the audit record of the most recent inbox action attempt.
type LastAction struct {
	MessageID string `json:"message_id"`
	Action    Action `json:"action"`
	Source    string `json:"source"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	AtMs      int64  `json:"at_ms"`
}

// World is the aggregate of all simulation state.
type World struct {
	Clock     Clock
	TimeScale TimeScale
	Messages  *MessageStore
	Orders    []*SalesOrder
	Payments  []*Payment
	Player    Player
	Timers    *TimerStore

	// LastAction is nil until the first inbox action is attempted.
	LastAction *LastAction
}

// New returns a world at sim time zero, real-time scale, with a rested player.
func New() *World {
	return &World{
		Clock:     NewClockAt(0),
		TimeScale: NewTimeScale(1),
		Messages:  NewMessageStore(),
		Player:    NewPlayer(),
		Timers:    NewTimerStore(),
	}
}

// FindOrder returns the order with id, or nil.
func (w *World) FindOrder(id string) *SalesOrder {
	for _, o := range w.Orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// AddOrder appends o. Returns false if an order with the same id exists.
func (w *World) AddOrder(o *SalesOrder) bool {
	if w.FindOrder(o.ID) != nil {
		return false
	}
	w.Orders = append(w.Orders, o)
	return true
}

// FindPayment returns the payment with id, or nil.
func (w *World) FindPayment(id string) *Payment {
	for _, p := range w.Payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindPaymentByMessage returns the payment announced by messageID, or nil.
func (w *World) FindPaymentByMessage(messageID string) *Payment {
	for _, p := range w.Payments {
		if p.MessageID == messageID {
			return p
		}
	}
	return nil
}

// Snapshot is a read-only copy of the world for external readers.
type Snapshot struct {
	Clock      Clock        `json:"clock"`
	Multiplier float64      `json:"multiplier"`
	Messages   []Message    `json:"messages"`
	Orders     []SalesOrder `json:"orders"`
	Payments   []Payment    `json:"payments"`
	Player     Player       `json:"player"`
	Timers     []Timer      `json:"timers"`
	LastAction *LastAction  `json:"last_action,omitempty"`
}

// Snapshot copies the world's state.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Clock:      w.Clock,
		Multiplier: w.TimeScale.Multiplier(),
		Player:     w.Player,
	}
	for _, m := range w.Messages.All() {
		s.Messages = append(s.Messages, m.Clone())
	}
	for _, o := range w.Orders {
		c := *o
		c.LineItems = append([]LineItem(nil), o.LineItems...)
		s.Orders = append(s.Orders, c)
	}
	for _, p := range w.Payments {
		s.Payments = append(s.Payments, *p)
	}
	for _, t := range w.Timers.All() {
		s.Timers = append(s.Timers, t.Clone())
	}
	if w.LastAction != nil {
		la := *w.LastAction
		s.LastAction = &la
	}
	if w.Player.SleepStartedAt != nil {
		s.Player.SleepStartedAt = cloneStamp(w.Player.SleepStartedAt)
	}
	return s
}
