package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifInfo    NotificationType = "info"
	NotifWarning NotificationType = "warning"
	NotifSuccess NotificationType = "success"
	NotifError   NotificationType = "error"
	NotifDanger  NotificationType = "danger"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotifInfo, NotifWarning, NotifSuccess, NotifError, NotifDanger:
		return true
	}
	return false
}

// Recipient addresses a notification to one account or, as a broadcast, to
// every account of a role.
type Recipient struct {
	role      Role
	id        uuid.UUID
	broadcast bool
}

func ToStudent(id uuid.UUID) Recipient {
	return Recipient{role: RoleStudent, id: id}
}

func ToTeacher(id uuid.UUID) Recipient {
	return Recipient{role: RoleTeacher, id: id}
}

func ToAdmin(id uuid.UUID) Recipient {
	return Recipient{role: RoleAdmin, id: id}
}

func Broadcast(role Role) Recipient {
	return Recipient{role: role, broadcast: true}
}

// RecipientFor targets the account behind a message participant. The
// administration is addressed as a whole.
func RecipientFor(p Participant) Recipient {
	if id, ok := p.ID(); ok {
		return Recipient{role: p.Role(), id: id}
	}
	return Broadcast(RoleAdmin)
}

func (r Recipient) Role() Role {
	return r.role
}

func (r Recipient) ID() (uuid.UUID, bool) {
	if r.broadcast {
		return uuid.Nil, false
	}
	return r.id, true
}

func (r Recipient) IsBroadcast() bool {
	return r.broadcast
}

func (r Recipient) IsValid() bool {
	return r.role.IsValid()
}

type Notification struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Message        string           `json:"message" db:"message"`
	Type           NotificationType `json:"type" db:"type"`
	IsRead         bool             `json:"is_read" db:"is_read"`
	RecipientID    *uuid.UUID       `json:"recipient,omitempty" db:"recipient_id"`
	RecipientModel Role             `json:"recipient_model" db:"recipient_model"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

func NewNotification(message string, typ NotificationType, to Recipient) *Notification {
	n := &Notification{
		ID:             uuid.New(),
		Message:        message,
		Type:           typ,
		RecipientModel: to.Role(),
	}
	if id, ok := to.ID(); ok {
		n.RecipientID = &id
	}
	return n
}

func (n Notification) Recipient() Recipient {
	if n.RecipientID == nil {
		return Broadcast(n.RecipientModel)
	}
	return Recipient{role: n.RecipientModel, id: *n.RecipientID}
}

type UnreadNotificationCount struct {
	Count int64 `json:"count"`
}
