// Package auth resolves which admin, if any, is behind a request. Browsers
// carry a signed session cookie; other clients send a bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"github.com/camden-git/agencybackend/models"
	"github.com/camden-git/agencybackend/repository"
)

const (
	CookieName = "agency_session"

	adminIDKey   = "admin_id"
	expiresAtKey = "expires_at"
)

// User is the public view of an authenticated admin.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated admin and the moment the proof expires.
type Session struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires"`
}

// SessionProvider reports the session behind a request. It returns nil and no
// error for anonymous requests.
type SessionProvider interface {
	CurrentSession(r *http.Request) (*Session, error)
}

// AdminLookup is the part of the admin store the authenticator needs.
type AdminLookup interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}

type Options struct {
	Secret        []byte
	SessionMaxAge time.Duration
	TokenTTL      time.Duration
	CookieSecure  bool
}

// Authenticator implements SessionProvider on top of a cookie store and a
// bearer token issuer.
type Authenticator struct {
	store  *sessions.CookieStore
	tokens *TokenIssuer
	admins AdminLookup
	maxAge time.Duration
	now    func() time.Time
}

func NewAuthenticator(opts Options, admins AdminLookup) *Authenticator {
	store := sessions.NewCookieStore(opts.Secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Authenticator{
		store:  store,
		tokens: NewTokenIssuer(opts.Secret, opts.TokenTTL),
		admins: admins,
		maxAge: opts.SessionMaxAge,
		now:    time.Now,
	}
}

// CurrentSession checks the bearer token first and falls back to the cookie.
// Invalid, expired or orphaned credentials resolve to an anonymous request.
func (a *Authenticator) CurrentSession(r *http.Request) (*Session, error) {
	if tokenString, ok := bearerToken(r); ok {
		adminID, expiresAt, err := a.tokens.Parse(tokenString)
		if err != nil {
			return nil, nil
		}
		return a.sessionFor(r.Context(), adminID, expiresAt)
	}

	sess, err := a.store.Get(r, CookieName)
	if err != nil || sess.IsNew {
		return nil, nil
	}

	adminID, _ := sess.Values[adminIDKey].(string)
	expiresUnix, _ := sess.Values[expiresAtKey].(int64)
	if adminID == "" || expiresUnix == 0 {
		return nil, nil
	}
	expiresAt := time.Unix(expiresUnix, 0)
	if !a.now().Before(expiresAt) {
		return nil, nil
	}
	return a.sessionFor(r.Context(), adminID, expiresAt)
}

func (a *Authenticator) sessionFor(ctx context.Context, adminID string, expiresAt time.Time) (*Session, error) {
	admin, err := a.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session admin: %w", err)
	}
	return &Session{
		User:      User{ID: admin.ID, Email: admin.Email},
		ExpiresAt: expiresAt,
	}, nil
}

// SignIn writes a session cookie for admin and also returns a bearer token
// for clients that do not keep cookies.
func (a *Authenticator) SignIn(w http.ResponseWriter, r *http.Request, admin *models.Admin) (*Session, string, error) {
	token, tokenExpiry, err := a.tokens.Issue(admin.ID)
	if err != nil {
		return nil, "", err
	}

	expiresAt := a.now().Add(a.maxAge)
	sess, _ := a.store.Get(r, CookieName)
	sess.Values[adminIDKey] = admin.ID
	sess.Values[expiresAtKey] = expiresAt.Unix()
	if err := sess.Save(r, w); err != nil {
		return nil, "", fmt.Errorf("failed to save session cookie: %w", err)
	}

	return &Session{
		User:      User{ID: admin.ID, Email: admin.Email},
		ExpiresAt: tokenExpiry,
	}, token, nil
}

// SignOut expires the session cookie.
func (a *Authenticator) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := a.store.Get(r, CookieName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session cookie: %w", err)
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
