package types

import (
	"fmt"
	"log/slog"
)

// User is an account that tickets can be assigned to.
type User struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Login     string `json:"login" yaml:"login" validate:"required,max=50"`
	FirstName string `json:"firstName,omitempty" yaml:"firstName,omitempty" validate:"max=50"`
	LastName  string `json:"lastName,omitempty" yaml:"lastName,omitempty" validate:"max=50"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email,max=254"`
}

// EntityID returns the user ID, or "" for a nil user.
func (u *User) EntityID() string {
	if u == nil {
		return ""
	}
	return u.ID
}

// Equal reports whether u and o denote the same user (see SameEntity).
func (u *User) Equal(o *User) bool { return SameEntity(u, o) }

// Validate checks the login and email constraints.
// Returns an error wrapping ErrInvalidData on failure.
func (u *User) Validate() error {
	return validateEntity("user", u)
}

func (u *User) String() string {
	return fmt.Sprintf("User{id=%s, login=%q}", u.ID, u.Login)
}

// LogValue implements slog.LogValuer.
func (u *User) LogValue() slog.Value {
	return slog.GroupValue(slog.String("id", u.ID), slog.String("login", u.Login))
}
