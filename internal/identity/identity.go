// Package identity resolves the user on whose behalf the CLI runs.
package identity

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// Provider returns the current user.
type Provider interface {
	// CurrentUser returns the acting user, or an error wrapping
	// types.ErrNoCurrentUser when there is none.
	CurrentUser(ctx context.Context) (*types.User, error)
}

// LoginProvider resolves a configured login against the users table.
type LoginProvider struct {
	login string
	users types.Table[*types.User]
}

var _ Provider = (*LoginProvider)(nil)

// NewLoginProvider returns a Provider for login. An empty login means
// nobody is signed in.
func NewLoginProvider(login string, users types.Table[*types.User]) *LoginProvider {
	return &LoginProvider{login: login, users: users}
}

// CurrentUser looks the login up in the users table.
func (p *LoginProvider) CurrentUser(ctx context.Context) (*types.User, error) {
	if p.login == "" {
		return nil, types.ErrNoCurrentUser
	}
	users, err := p.users.Fetch(ctx, types.Filter{"login": p.login})
	if err != nil {
		return nil, fmt.Errorf("look up user %q: %w", p.login, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: login %q is not registered", types.ErrNoCurrentUser, p.login)
	}
	return users[0], nil
}
