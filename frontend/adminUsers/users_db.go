package adminusers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"gridstock/frontend/login"
	"gridstock/infrastructure/argon"
	"gridstock/infrastructure/rbac"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidRole      = errors.New("role must be admin or staff")
	ErrUsernameExists   = errors.New("username already exists")
)

func LoadUsersPageData(ctx context.Context, db *sqlite.DB) (PageData, error) {
	data := PageData{Users: make([]UserView, 0), Roles: rbac.Roles}
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw("SELECT id, username, role, created_at FROM users ORDER BY id ASC").Scan(ctx, &data.Users)
	})
	return data, err
}

// CreateUser inserts a new account. Usernames are unique ignoring case.
func CreateUser(ctx context.Context, db *sqlite.DB, username, password, role string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, ErrUsernameRequired
	}
	if strings.TrimSpace(password) == "" {
		return models.User{}, ErrPasswordRequired
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if !rbac.IsKnownRole(role) {
		return models.User{}, ErrInvalidRole
	}
	if err := login.ValidatePasswordPolicy(password); err != nil {
		return models.User{}, err
	}
	hash, err := argon.CreateHash(password, argon.DefaultParams)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	user := models.User{Username: username, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&user).Exec(ctx)
		return err
	})
	if sqlite.IsUniqueViolation(err) {
		return models.User{}, ErrUsernameExists
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
