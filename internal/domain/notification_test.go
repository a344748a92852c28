package domain_test

import (
	"testing"
	"time"

	"school-portal/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, time.October, 1, 9, 0, 0, 0, time.UTC)

func TestRecipient_Constructors(t *testing.T) {
	id := uuid.New()

	targeted := domain.ToStudent(id)
	got, ok := targeted.ID()
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, domain.RoleStudent, targeted.Role())
	assert.False(t, targeted.IsBroadcast())

	broadcast := domain.Broadcast(domain.RoleTeacher)
	_, ok = broadcast.ID()
	assert.False(t, ok)
	assert.True(t, broadcast.IsBroadcast())
	assert.Equal(t, domain.RoleTeacher, broadcast.Role())

	assert.False(t, domain.Broadcast("Parent").IsValid())
}

func TestRecipientFor(t *testing.T) {
	id := uuid.New()

	assert.Equal(t, domain.ToTeacher(id), domain.RecipientFor(domain.TeacherParticipant(id)))
	assert.Equal(t, domain.Broadcast(domain.RoleAdmin), domain.RecipientFor(domain.AdminParticipant()))
}

func TestNewNotification(t *testing.T) {
	id := uuid.New()

	n := domain.NewNotification("paid", domain.NotifSuccess, domain.ToStudent(id))
	require.NotNil(t, n.RecipientID)
	assert.Equal(t, id, *n.RecipientID)
	assert.Equal(t, domain.RoleStudent, n.RecipientModel)
	assert.False(t, n.IsRead)
	assert.Equal(t, domain.ToStudent(id), n.Recipient())

	b := domain.NewNotification("x", domain.NotifInfo, domain.Broadcast(domain.RoleStudent))
	assert.Nil(t, b.RecipientID)
	assert.True(t, b.Recipient().IsBroadcast())
}

func TestNotificationType_Danger(t *testing.T) {
	assert.True(t, domain.NotifDanger.IsValid())
	assert.NotEqual(t, domain.NotifError, domain.NotifDanger)
	assert.False(t, domain.NotificationType("critical").IsValid())
}
