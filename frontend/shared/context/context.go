package context

import (
	"context"

	"gridstock/models"
)

type sessionKey struct{}

// SystemActor is the audit actor used when no session is present.
const SystemActor = "System"

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// ActorFromContext returns the username recorded on audit entries.
func ActorFromContext(ctx context.Context) string {
	s, ok := GetSessionFromContext(ctx)
	if !ok || s.User.Username == "" {
		return SystemActor
	}
	return s.User.Username
}

// IsAdmin reports whether the session user holds the admin role.
func IsAdmin(ctx context.Context) bool {
	s, ok := GetSessionFromContext(ctx)
	return ok && s.User.Role == models.RoleAdmin
}
