package message

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
	"school-portal/internal/service/dispatch"
	"school-portal/internal/service/email"
	"school-portal/internal/service/notification"
)

const administrationName = "School Administration"

type Service interface {
	Send(ctx context.Context, sender, recipient domain.Participant, text string) (*domain.Message, error)
	// Thread returns the conversation between viewer and other, oldest first,
	// and marks other's unread messages to viewer as read. The returned
	// messages show their state from before the marking.
	Thread(ctx context.Context, viewer, other domain.Participant) ([]domain.Message, error)
	// Edit and Delete act only on messages whose sender is actor.
	Edit(ctx context.Context, actor domain.Participant, id uuid.UUID, text string) (*domain.Message, error)
	Delete(ctx context.Context, actor domain.Participant, id uuid.UUID) error
	UnreadCounts(ctx context.Context, viewer domain.Participant) (*domain.UnreadCounts, error)
	AdminBroadcasts(ctx context.Context) ([]domain.Message, error)
}

type service struct {
	msgRepo     repository.MessageRepository
	teacherRepo repository.TeacherRepository
	studentRepo repository.StudentRepository
	notifier    notification.Service
	emailSvc    email.Service
	dispatcher  *dispatch.Dispatcher
	adminEmail  string
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(
	msgRepo repository.MessageRepository,
	teacherRepo repository.TeacherRepository,
	studentRepo repository.StudentRepository,
	notifier notification.Service,
	emailSvc email.Service,
	dispatcher *dispatch.Dispatcher,
	adminEmail string,
	logger *slog.Logger,
) Service {
	return &service{
		msgRepo:     msgRepo,
		teacherRepo: teacherRepo,
		studentRepo: studentRepo,
		notifier:    notifier,
		emailSvc:    emailSvc,
		dispatcher:  dispatcher,
		adminEmail:  adminEmail,
		logger:      logger.With("component", "message"),
		now:         time.Now,
	}
}

type contact struct {
	name  string
	email string
}

func (s *service) contact(ctx context.Context, p domain.Participant) (*contact, error) {
	id, ok := p.ID()
	if !ok {
		return &contact{name: administrationName, email: s.adminEmail}, nil
	}

	switch p.Role() {
	case domain.RoleTeacher:
		teacher, err := s.teacherRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load teacher: %w", err)
		}
		if teacher == nil {
			return nil, domain.NotFoundf("teacher %s not found", id)
		}
		return &contact{name: teacher.FullName(), email: teacher.Email}, nil
	case domain.RoleStudent:
		student, err := s.studentRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load student: %w", err)
		}
		if student == nil {
			return nil, domain.NotFoundf("student %s not found", id)
		}
		return &contact{name: student.FullName(), email: student.Email}, nil
	}
	return nil, domain.Invalidf("unknown participant %s", p)
}

func (s *service) Send(ctx context.Context, sender, recipient domain.Participant, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalidf("message text is required")
	}
	if _, err := domain.ChannelOf(sender, recipient); err != nil {
		return nil, err
	}

	from, err := s.contact(ctx, sender)
	if err != nil {
		return nil, err
	}
	to, err := s.contact(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if recipient.Role() == domain.RoleTeacher && !isTeacherAddress(to.email) {
		return nil, domain.Unauthorizedf("recipient is not a valid teacher")
	}

	msg := domain.NewMessage(sender, recipient, text, s.now())
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	s.logger.Info("message sent", "id", msg.ID, "from", sender.Tag(), "to", recipient.Tag())

	s.dispatcher.Go("email.new_message", func(ctx context.Context) error {
		return s.emailSvc.SendNewMessage(ctx, email.MessageEmail{
			ToEmail:       to.email,
			RecipientName: to.name,
			SenderName:    from.name,
			From:          sender.Role(),
			To:            recipient.Role(),
			Text:          text,
		})
	})

	notice := "New message from " + from.name
	if sender.Role() == domain.RoleAdmin {
		notice = "New message from the " + administrationName
	}
	s.dispatcher.Go("notify.new_message",
		notification.Task(s.notifier, notice, domain.NotifInfo, domain.RecipientFor(recipient)))

	return msg, nil
}

// isTeacherAddress rejects teacher records that carry an administration
// address, so that admin mail never leaks through the teacher channel.
func isTeacherAddress(addr string) bool {
	return addr != "" && !strings.Contains(strings.ToLower(addr), "admin")
}

func (s *service) Thread(ctx context.Context, viewer, other domain.Participant) ([]domain.Message, error) {
	if _, err := domain.ChannelOf(viewer, other); err != nil {
		return nil, err
	}

	messages, err := s.msgRepo.Thread(ctx, viewer, other)
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}

	if _, err := s.msgRepo.MarkRead(ctx, other, viewer); err != nil {
		return nil, fmt.Errorf("mark thread read: %w", err)
	}

	return messages, nil
}

// owned loads message id and checks that actor sent it.
func (s *service) owned(ctx context.Context, actor domain.Participant, id uuid.UUID) (*domain.Message, error) {
	msg, err := s.msgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load message: %w", err)
	}
	if msg == nil {
		return nil, domain.NotFoundf("message %s not found", id)
	}
	if !msg.Sender.Equal(actor) {
		return nil, domain.Forbiddenf("only the sender can change this message")
	}
	return msg, nil
}

func (s *service) Edit(ctx context.Context, actor domain.Participant, id uuid.UUID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalidf("message text is required")
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	msg, err := s.msgRepo.UpdateText(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	if msg == nil {
		return nil, domain.NotFoundf("message %s not found", id)
	}
	return msg, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Participant, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}

	deleted, err := s.msgRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if !deleted {
		return domain.NotFoundf("message %s not found", id)
	}
	s.logger.Info("message deleted", "id", id, "by", actor.Tag())
	return nil
}

func (s *service) UnreadCounts(ctx context.Context, viewer domain.Participant) (*domain.UnreadCounts, error) {
	counts, err := s.msgRepo.UnreadBySender(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("count unread messages: %w", err)
	}

	result := &domain.UnreadCounts{PerCounterpart: make(map[string]int64)}
	for _, c := range counts {
		if id, ok := c.Sender.ID(); ok {
			result.PerCounterpart[id.String()] += c.Count
		} else {
			result.FromAdmin += c.Count
		}
	}
	return result, nil
}

func (s *service) AdminBroadcasts(ctx context.Context) ([]domain.Message, error) {
	return s.msgRepo.ListFromAdminToTeachers(ctx)
}
