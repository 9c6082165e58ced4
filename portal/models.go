package portal

import "time"

type Role string

const (
	RoleAgent Role = "agent"
	RoleStaff Role = "staff"
)

// User is the domain representation of a portal account. Login doubles as
// the email address, matching how accounts are provisioned from agent
// registrations.
type User struct {
	ID           string
	Login        string
	Name         string
	PasswordHash string
	Role         Role
	AgentID      *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LoginRequest contains portal login credentials.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
