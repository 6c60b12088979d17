package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/camden-git/agencybackend/auth"
	"github.com/camden-git/agencybackend/models"
	"github.com/camden-git/agencybackend/repository"
	"github.com/camden-git/agencybackend/validation"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgSignedOut          = "Signed out"
	msgFailedSignIn       = "Failed to sign in"
	msgFailedSignOut      = "Failed to sign out"
	msgFailedLoadSession  = "Failed to load session"
)

// SessionManager issues and revokes sessions in addition to resolving them.
type SessionManager interface {
	auth.SessionProvider
	SignIn(w http.ResponseWriter, r *http.Request, admin *models.Admin) (*auth.Session, string, error)
	SignOut(w http.ResponseWriter, r *http.Request) error
}

type AuthHandler struct {
	Admins   repository.AdminRepositoryInterface
	Sessions SessionManager
	Log      logrus.FieldLogger
}

func NewAuthHandler(admins repository.AdminRepositoryInterface, sessions SessionManager, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Admins: admins, Sessions: sessions, Log: log}
}

type LoginResponse struct {
	User      auth.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionResponse struct {
	User auth.User `json:"user"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}
	input, err := validation.DecodeLoginInput(body)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}

	admin, err := h.Admins.GetByEmail(r.Context(), input.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.Log.WithError(err).Error("failed to look up admin for login")
			writeError(w, http.StatusInternalServerError, msgFailedSignIn)
			return
		}
		models.RejectUnknownAdmin(input.Password)
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if !admin.CheckPassword(input.Password) {
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	session, token, err := h.Sessions.SignIn(w, r, admin)
	if err != nil {
		h.Log.WithError(err).Error("failed to start session")
		writeError(w, http.StatusInternalServerError, msgFailedSignIn)
		return
	}

	h.Log.WithField("admin", admin.Email).Info("admin signed in")
	writeData(w, http.StatusOK, LoginResponse{
		User:      session.User,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.WithError(err).Error("failed to end session")
		writeError(w, http.StatusInternalServerError, msgFailedSignOut)
		return
	}
	writeMessage(w, http.StatusOK, msgSignedOut)
}

// CurrentSession handles GET /api/auth/session. Anonymous callers get
// {"data": null} rather than an error.
func (h *AuthHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.CurrentSession(r)
	if err != nil {
		h.Log.WithError(err).Error("failed to resolve session")
		writeError(w, http.StatusInternalServerError, msgFailedLoadSession)
		return
	}
	if session == nil {
		writeData(w, http.StatusOK, nil)
		return
	}
	writeData(w, http.StatusOK, sessionResponse{User: session.User})
}
