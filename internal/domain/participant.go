package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleTeacher Role = "Teacher"
	RoleStudent Role = "Student"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	for _, r := range []Role{RoleAdmin, RoleTeacher, RoleStudent} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", Invalidf("unknown role %q", s)
}

// Participant identifies one end of a message thread. The school has a
// single administration, so the Admin variant carries no identity.
type Participant struct {
	role Role
	id   uuid.UUID
}

func AdminParticipant() Participant {
	return Participant{role: RoleAdmin}
}

func TeacherParticipant(id uuid.UUID) Participant {
	return Participant{role: RoleTeacher, id: id}
}

func StudentParticipant(id uuid.UUID) Participant {
	return Participant{role: RoleStudent, id: id}
}

// NewParticipant builds a participant from a role and, for non-admin roles, an id.
func NewParticipant(role Role, id uuid.UUID) (Participant, error) {
	switch role {
	case RoleAdmin:
		return AdminParticipant(), nil
	case RoleTeacher, RoleStudent:
		if id == uuid.Nil {
			return Participant{}, Invalidf("%s participant requires an id", role)
		}
		return Participant{role: role, id: id}, nil
	}
	return Participant{}, Invalidf("unknown role %q", role)
}

func (p Participant) Role() Role {
	return p.role
}

// ID returns the participant's account id. The second value is false for Admin.
func (p Participant) ID() (uuid.UUID, bool) {
	if p.role == RoleAdmin || p.role == "" {
		return uuid.Nil, false
	}
	return p.id, true
}

func (p Participant) IsZero() bool {
	return p.role == ""
}

func (p Participant) Equal(other Participant) bool {
	return p.role == other.role && p.id == other.id
}

// Tag renders the stored form: "Admin", "Teacher-<id>" or "Student-<id>".
func (p Participant) Tag() string {
	switch p.role {
	case RoleAdmin:
		return string(RoleAdmin)
	case "":
		return ""
	}
	return string(p.role) + "-" + p.id.String()
}

func (p Participant) String() string {
	return p.Tag()
}

func ParseParticipant(tag string) (Participant, error) {
	if tag == string(RoleAdmin) {
		return AdminParticipant(), nil
	}
	role, rawID, ok := strings.Cut(tag, "-")
	if !ok {
		return Participant{}, Invalidf("malformed participant tag %q", tag)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Participant{}, Invalidf("malformed participant id in %q", tag)
	}
	switch Role(role) {
	case RoleTeacher:
		return TeacherParticipant(id), nil
	case RoleStudent:
		return StudentParticipant(id), nil
	}
	return Participant{}, Invalidf("unknown participant role in %q", tag)
}

func (p Participant) MarshalText() ([]byte, error) {
	return []byte(p.Tag()), nil
}

func (p *Participant) UnmarshalText(text []byte) error {
	parsed, err := ParseParticipant(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Participant) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("cannot store empty participant")
	}
	return p.Tag(), nil
}

func (p *Participant) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return p.UnmarshalText([]byte(v))
	case []byte:
		return p.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into Participant", src)
}

type Channel string

const (
	ChannelAdminTeacher   Channel = "AdminTeacher"
	ChannelAdminStudent   Channel = "AdminStudent"
	ChannelTeacherStudent Channel = "TeacherStudent"
)

// ChannelOf returns the channel the two participants talk across. Pairs of
// the same role have no channel.
func ChannelOf(a, b Participant) (Channel, error) {
	roles := map[Role]bool{a.role: true, b.role: true}
	switch {
	case len(roles) != 2:
	case roles[RoleAdmin] && roles[RoleTeacher]:
		return ChannelAdminTeacher, nil
	case roles[RoleAdmin] && roles[RoleStudent]:
		return ChannelAdminStudent, nil
	case roles[RoleTeacher] && roles[RoleStudent]:
		return ChannelTeacherStudent, nil
	}
	return "", Invalidf("no message channel between %s and %s", a.role, b.role)
}
