package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/camden-git/agencybackend/auth"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// SessionContextKey holds the *auth.Session of an authenticated request.
	SessionContextKey ContextKey = "session"
)

// RequireSession rejects requests without an admin session with 401 before
// the wrapped handler runs, so no body is read and nothing is written.
func RequireSession(sessions auth.SessionProvider, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.CurrentSession(r)
			if err != nil {
				log.WithError(err).Error("failed to resolve session")
				writeError(w, http.StatusInternalServerError, msgInternalError)
				return
			}
			if session == nil {
				writeError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session stored by RequireSession, if any.
func SessionFromContext(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(SessionContextKey).(*auth.Session)
	return session
}

// actor names the admin behind a request for audit log lines.
func actor(r *http.Request) string {
	if session := SessionFromContext(r.Context()); session != nil {
		return session.User.Email
	}
	return ""
}
