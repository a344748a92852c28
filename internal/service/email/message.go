package email

import (
	"fmt"

	"school-portal/internal/domain"
)

const previewLength = 100

// Preview shortens message text for an email body.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}

type direction struct {
	subject string
	intro   string
}

var directions = map[[2]domain.Role]direction{
	{domain.RoleAdmin, domain.RoleTeacher}: {
		subject: "New message from the School Administration",
		intro:   "The school administration has sent you a message.",
	},
	{domain.RoleAdmin, domain.RoleStudent}: {
		subject: "New message from the School Administration",
		intro:   "The school administration has sent you a message.",
	},
	{domain.RoleTeacher, domain.RoleAdmin}: {
		subject: "New message from a teacher",
		intro:   "A teacher has sent the administration a message.",
	},
	{domain.RoleStudent, domain.RoleAdmin}: {
		subject: "New message from a student",
		intro:   "A student has sent the administration a message.",
	},
	{domain.RoleStudent, domain.RoleTeacher}: {
		subject: "New message from your student",
		intro:   "One of your students has sent you a message.",
	},
	{domain.RoleTeacher, domain.RoleStudent}: {
		subject: "New message from your teacher",
		intro:   "Your teacher has sent you a message.",
	},
}

func directionOf(from, to domain.Role) (direction, error) {
	d, ok := directions[[2]domain.Role{from, to}]
	if !ok {
		return direction{}, fmt.Errorf("no message email for %s to %s", from, to)
	}
	return d, nil
}
