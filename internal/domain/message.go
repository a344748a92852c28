package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	Sender     Participant `json:"sender" db:"sender"`
	Recipient  Participant `json:"recipient" db:"recipient"`
	SenderID   *uuid.UUID  `json:"sender_id,omitempty" db:"sender_id"`
	ReceiverID *uuid.UUID  `json:"receiver_id,omitempty" db:"receiver_id"`
	Text       string      `json:"text" db:"text"`
	IsRead     bool        `json:"is_read" db:"is_read"`
	Timestamp  time.Time   `json:"timestamp" db:"sent_at"`
}

func NewMessage(sender, recipient Participant, text string, at time.Time) *Message {
	m := &Message{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		Timestamp: at,
	}
	if id, ok := sender.ID(); ok {
		m.SenderID = &id
	}
	if id, ok := recipient.ID(); ok {
		m.ReceiverID = &id
	}
	return m
}

type SenderCount struct {
	Sender Participant `db:"sender"`
	Count  int64       `db:"count"`
}

type UnreadCounts struct {
	FromAdmin      int64            `json:"from_admin"`
	PerCounterpart map[string]int64 `json:"per_counterpart"`
}

type SendMessageInput struct {
	RecipientRole string `json:"recipient_role" validate:"required,oneof=Admin Teacher Student"`
	RecipientID   string `json:"recipient_id" validate:"omitempty,uuid"`
	Text          string `json:"text" validate:"required"`
}

type EditMessageInput struct {
	Text string `json:"text" validate:"required"`
}
