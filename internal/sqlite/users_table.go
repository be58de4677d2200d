package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// usersTable implements types.Table for users. Logins are unique.
type usersTable struct {
	backend *Backend
}

var _ types.Table[*types.User] = (*usersTable)(nil)

const userColumns = "user_id, login, first_name, last_name, email"

func scanUser(s scanner) (*types.User, error) {
	u := &types.User{}
	if err := s.Scan(&u.ID, &u.Login, &u.FirstName, &u.LastName, &u.Email); err != nil {
		return nil, err
	}
	return u, nil
}

// Get retrieves a user by ID.
func (t *usersTable) Get(ctx context.Context, id string) (*types.User, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return getUser(ctx, b.db, id)
}

func getUser(ctx context.Context, q querier, id string) (*types.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// Exists reports whether a user with the given ID is stored.
func (t *usersTable) Exists(ctx context.Context, id string) (bool, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false, types.ErrStoreDetached
	}
	return rowExists(ctx, b.db, types.UsersTable, "user_id", id)
}

// Set creates or replaces a user after validating it. Returns
// ErrDuplicateLogin if another user already has the login.
func (t *usersTable) Set(ctx context.Context, id string, u *types.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: nil user", types.ErrInvalidData)
	}
	if err := u.Validate(); err != nil {
		return "", err
	}

	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}
	if id == "" {
		id = u.ID
	}
	if id == "" {
		id = generateUUID()
	}

	var owner string
	err := b.db.QueryRowContext(ctx,
		"SELECT user_id FROM users WHERE login = ? AND user_id <> ?", u.Login, id).Scan(&owner)
	if err == nil {
		return "", fmt.Errorf("%w: %s", types.ErrDuplicateLogin, u.Login)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("check login: %w", err)
	}

	ts := now()
	_, err = b.db.ExecContext(ctx, `INSERT INTO users (user_id, login, first_name, last_name, email, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    login = excluded.login,
    first_name = excluded.first_name,
    last_name = excluded.last_name,
    email = excluded.email,
    updated_at = excluded.updated_at`,
		id, u.Login, u.FirstName, u.LastName, u.Email, ts, ts)
	if err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}
	u.ID = id

	if err := b.persistLocked(types.UsersTable); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a user. Tickets assigned to the user become unassigned.
func (t *usersTable) Delete(ctx context.Context, id string) error {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if id == "" {
		return types.ErrInvalidID
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := deleteRow(ctx, tx, types.UsersTable, "user_id", id)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE tickets SET assigned_to = NULL, updated_at = ? WHERE assigned_to = ?", now(), id); err != nil {
		return fmt.Errorf("unassign tickets: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return b.persistLocked(types.UsersTable, types.TicketsTable)
}

// Fetch returns users in creation order. Filter keys: login (exact match),
// limit, offset.
func (t *usersTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.User, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	w, err := userWhere(filter)
	if err != nil {
		return nil, err
	}
	page, err := pageClause(filter)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+w.String()+" ORDER BY created_at, user_id"+page,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	defer rows.Close()

	users := []*types.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns the number of users matching the filter.
func (t *usersTable) Count(ctx context.Context, filter types.Filter) (int, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}
	w, err := userWhere(filter)
	if err != nil {
		return 0, err
	}
	n, err := countRows(ctx, b.db, "SELECT COUNT(*) FROM users"+w.String(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func userWhere(filter types.Filter) (*where, error) {
	if err := checkFilterKeys(filter, "login"); err != nil {
		return nil, err
	}
	w := &where{}
	if login, ok, err := stringFilter(filter, "login"); err != nil {
		return nil, err
	} else if ok {
		w.add("login = ?", login)
	}
	return w, nil
}
