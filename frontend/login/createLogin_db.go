package login

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"gridstock/infrastructure/argon"
	"gridstock/infrastructure/rbac"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

func findUserByUsername(ctx context.Context, tx bun.IDB, username string) (models.User, error) {
	var user models.User
	err := tx.NewSelect().
		Model(&user).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks the password and upgrades a stale hash in place.
func Authenticate(ctx context.Context, db *sqlite.DB, username, password string) (models.User, error) {
	var user models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = findUserByUsername(ctx, tx, username)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	ok, err := argon.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("compare password for %s: %w", user.Username, err)
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	if argon.NeedsRehash(user.PasswordHash, argon.DefaultParams) {
		if err := rehashPassword(ctx, db, &user, password); err != nil {
			return models.User{}, err
		}
	}
	return user, nil
}

func rehashPassword(ctx context.Context, db *sqlite.DB, user *models.User, password string) error {
	hash, err := argon.CreateHash(password, argon.DefaultParams)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("password_hash = ?", hash).
			Set("updated_at = ?", now).
			Where("id = ?", user.ID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("rehash password for %s: %w", user.Username, err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = now
	return nil
}

func persistSession(ctx context.Context, db *sqlite.DB, session models.Session) error {
	now := time.Now().UTC()
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&models.Session{
			ID:        session.ID,
			UserID:    session.UserID,
			ExpiresAt: session.ExpiresAt.UTC(),
			CreatedAt: now,
			UpdatedAt: now,
		}).Exec(ctx)
		return err
	})
}

func DeleteSessionByToken(ctx context.Context, db *sqlite.DB, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("id = ?", token).Exec(ctx)
		return err
	})
}

// DeleteExpiredSessions removes sessions whose expiry is before now.
func DeleteExpiredSessions(ctx context.Context, db *sqlite.DB, now time.Time) (int64, error) {
	var deleted int64
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.Session)(nil)).Where("expires_at < ?", now.UTC()).Exec(ctx)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

// LoadSessionByToken returns the live session for token, or sql.ErrNoRows.
func LoadSessionByToken(ctx context.Context, db *sqlite.DB, token string) (models.Session, error) {
	var session models.Session
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(&session).
			Relation("User").
			Where("s.id = ?", token).
			Limit(1).
			Scan(ctx); err != nil {
			return err
		}
		session.UserRoles = []string{session.User.Role}
		if session.ScreenPermissions == nil {
			session.ScreenPermissions = make(map[string]int)
		}
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}
	if session.Expired() {
		_ = DeleteSessionByToken(ctx, db, token)
		return models.Session{}, sql.ErrNoRows
	}
	return session, nil
}

// UpsertUserPasswordHash creates username or resets its password and role.
func UpsertUserPasswordHash(ctx context.Context, db *sqlite.DB, username, role, rawPassword string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if !rbac.IsKnownRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	rawPassword = strings.TrimSpace(rawPassword)
	if rawPassword == "" {
		return errors.New("password is required")
	}
	if err := ValidatePasswordPolicy(rawPassword); err != nil {
		return err
	}
	hash, err := argon.CreateHash(rawPassword, argon.DefaultParams)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&models.User{Username: username, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}).
			On("CONFLICT (username) DO UPDATE").
			Set("password_hash = EXCLUDED.password_hash").
			Set("role = EXCLUDED.role").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
}
