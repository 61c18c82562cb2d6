package world

import (
	"slices"
	"time"
)

// MessageType categorizes inbox messages.
type MessageType string

const (
	MessageCustomerPO MessageType = "CustomerPO"
	MessagePayment    MessageType = "Payment"
	MessageSystem     MessageType = "System"
	MessageNewsletter MessageType = "Newsletter"
	MessageComplaint  MessageType = "Complaint"
	MessageInquiry    MessageType = "Inquiry"
	MessageSpam       MessageType = "Spam"
)

// Priority is the urgency a message is shown with.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Action is a player-issued operation on a message.
type Action string

const (
	ActionRead    Action = "read"
	ActionArchive Action = "archive"
	ActionDelete  Action = "delete"
	ActionSpam    Action = "spam"
	ActionAccept  Action = "accept"
	ActionCollect Action = "collect"
)

// Message is an inbox message.
//
// Tombstone fields (ReadAt, DeletedAt, SpamAt) hold the sim time they were
// set at and are never cleared.
type Message struct {
	ID              string      `json:"id" yaml:"id"`
	Type            MessageType `json:"type" yaml:"type"`
	Subject         string      `json:"subject" yaml:"subject"`
	Body            string      `json:"body" yaml:"body"`
	Author          string      `json:"author" yaml:"author"`
	Priority        Priority    `json:"priority" yaml:"priority"`
	SimNowMs        int64       `json:"sim_now_ms" yaml:"sim_now_ms"`
	DayIndex        int64       `json:"day_index" yaml:"day_index"`
	MinuteOfDay     int         `json:"minute_of_day" yaml:"minute_of_day"`
	Timestamp       time.Time   `json:"timestamp" yaml:"timestamp"`
	PossibleActions []Action    `json:"possible_actions" yaml:"possible_actions"`
	Tags            []string    `json:"tags,omitempty" yaml:"tags"`
	LineItems       []LineItem  `json:"line_items,omitempty" yaml:"line_items"`
	ReadAt          *int64      `json:"read_at,omitempty" yaml:"read_at"`
	DeletedAt       *int64      `json:"deleted_at,omitempty" yaml:"deleted_at"`
	SpamAt          *int64      `json:"spam_at,omitempty" yaml:"spam_at"`
	IsSpam          bool        `json:"is_spam,omitempty" yaml:"is_spam"`
}

// Allows reports whether action is one of the message's possible actions.
func (m *Message) Allows(action Action) bool {
	return slices.Contains(m.PossibleActions, action)
}

// IsRead reports whether the message has been read.
func (m *Message) IsRead() bool { return m.ReadAt != nil }

// IsDeleted reports whether the message carries a delete tombstone.
func (m *Message) IsDeleted() bool { return m.DeletedAt != nil }

// Clone returns a deep copy, safe to hand out as a snapshot.
func (m *Message) Clone() Message {
	c := *m
	c.PossibleActions = slices.Clone(m.PossibleActions)
	c.Tags = slices.Clone(m.Tags)
	c.LineItems = slices.Clone(m.LineItems)
	c.ReadAt = cloneStamp(m.ReadAt)
	c.DeletedAt = cloneStamp(m.DeletedAt)
	c.SpamAt = cloneStamp(m.SpamAt)
	return c
}

func cloneStamp(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func stamp(at int64) *int64 {
	return &at
}

// MessageStore holds inbox messages in arrival order.
type MessageStore struct {
	messages []*Message
	index    map[string]*Message
}

// NewMessageStore returns an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{index: make(map[string]*Message)}
}

// Find returns the message with the given id, or nil.
func (s *MessageStore) Find(id string) *Message {
	return s.index[id]
}

// Add appends msg. Returns false if a message with the same id exists.
func (s *MessageStore) Add(msg Message) bool {
	if _, ok := s.index[msg.ID]; ok {
		return false
	}
	m := msg.Clone()
	s.messages = append(s.messages, &m)
	s.index[m.ID] = &m
	return true
}

// MarkRead sets ReadAt once. Returns false if the message is unknown.
func (s *MessageStore) MarkRead(id string, atMs int64) bool {
	m := s.index[id]
	if m == nil {
		return false
	}
	if m.ReadAt == nil {
		m.ReadAt = stamp(atMs)
	}
	return true
}

// MarkSpam sets SpamAt once and flags the message as spam.
func (s *MessageStore) MarkSpam(id string, atMs int64) bool {
	m := s.index[id]
	if m == nil {
		return false
	}
	if m.SpamAt == nil {
		m.SpamAt = stamp(atMs)
	}
	m.IsSpam = true
	return true
}

// MarkSoftDeleted sets the DeletedAt tombstone once.
func (s *MessageStore) MarkSoftDeleted(id string, atMs int64) bool {
	m := s.index[id]
	if m == nil {
		return false
	}
	if m.DeletedAt == nil {
		m.DeletedAt = stamp(atMs)
	}
	return true
}

// HardDelete physically removes a message. Only explicit hard-delete
// requests use this.
func (s *MessageStore) HardDelete(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	s.messages = slices.DeleteFunc(s.messages, func(m *Message) bool { return m.ID == id })
	return true
}

// Clear removes every message and returns how many were removed.
func (s *MessageStore) Clear() int {
	n := len(s.messages)
	s.messages = nil
	s.index = make(map[string]*Message)
	return n
}

// Active returns the messages without a delete tombstone, in arrival order.
func (s *MessageStore) Active() []*Message {
	var out []*Message
	for _, m := range s.messages {
		if !m.IsDeleted() {
			out = append(out, m)
		}
	}
	return out
}

// All returns every stored message including tombstoned ones.
func (s *MessageStore) All() []*Message {
	return slices.Clone(s.messages)
}

// Len returns the number of stored messages including tombstoned ones.
func (s *MessageStore) Len() int { return len(s.messages) }

// IsFull reports whether the count of active messages has reached max.
// A max of zero or less means unbounded.
func (s *MessageStore) IsFull(max int) bool {
	if max <= 0 {
		return false
	}
	return len(s.Active()) >= max
}
