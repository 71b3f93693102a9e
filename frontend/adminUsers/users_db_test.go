package adminusers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/argon"
	"gridstock/infrastructure/cache"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

func openAdminUsersTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "admin-users-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestCreateUser_HappyPathStoresHashAndRole(t *testing.T) {
	db := openAdminUsersTestDB(t)

	if _, err := CreateUser(context.Background(), db, "staff2", "Staff123!Strong", "staff"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	var role string
	var passwordHash string
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT role, password_hash FROM users WHERE username = ?`, "staff2").Scan(ctx, &role, &passwordHash)
	})
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if role != "staff" {
		t.Fatalf("expected role=staff, got %s", role)
	}
	if passwordHash == "Staff123!Strong" {
		t.Fatalf("expected password to be hashed")
	}
	ok, err := argon.ComparePasswordAndHash("Staff123!Strong", passwordHash)
	if err != nil {
		t.Fatalf("verify hash: %v", err)
	}
	if !ok {
		t.Fatalf("expected stored hash to match password")
	}
}

func TestCreateUser_DuplicateUsernameRejectedCaseInsensitive(t *testing.T) {
	db := openAdminUsersTestDB(t)

	if _, err := CreateUser(context.Background(), db, "CaseUser", "Case123!Password", "staff"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	_, err := CreateUser(context.Background(), db, "caseuser", "Case456!Password", "admin")
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestCreateUser_InvalidRoleRejected(t *testing.T) {
	db := openAdminUsersTestDB(t)

	_, err := CreateUser(context.Background(), db, "ops", "Ops123!Password", "operator")
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestCreateUser_PasswordPolicyEnforced(t *testing.T) {
	db := openAdminUsersTestDB(t)

	_, err := CreateUser(context.Background(), db, "weakuser", "abcd", "staff")
	if err == nil {
		t.Fatalf("expected password policy error")
	}
	if !apperr.IsValidation(err) || !strings.Contains(err.Error(), "password: must be at least 12 characters") {
		t.Fatalf("expected password policy message, got %v", err)
	}
}

func TestCreateUserCommandHandler(t *testing.T) {
	db := openAdminUsersTestDB(t)
	users := cache.NewUserCache()
	ctx := sessioncontext.NewContextWithSession(context.Background(), models.Session{User: models.User{Username: "admin", Role: models.RoleAdmin}})

	form := url.Values{"username": {"packer"}, "password": {"Packer123!Strong"}, "role": {"staff"}}
	req := httptest.NewRequest(http.MethodPost, "/tasker/admin/users", strings.NewReader(form.Encode())).WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	CreateUserCommandHandler(db, users, zap.NewNop()).ServeHTTP(rec, req)

	if !strings.Contains(rec.Header().Get("Location"), "status=user+created") {
		t.Fatalf("unexpected redirect %s", rec.Header().Get("Location"))
	}
	if _, ok := users.Get("packer"); !ok {
		t.Fatalf("expected created user to be cached")
	}

	page := httptest.NewRequest(http.MethodGet, "/tasker/admin/users", nil).WithContext(ctx)
	rec = httptest.NewRecorder()
	UsersPageQueryHandler(db, zap.NewNop()).ServeHTTP(rec, page)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "packer") {
		t.Fatalf("expected users page to list packer, got %d", rec.Code)
	}
}
