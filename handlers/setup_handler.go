package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/camden-git/agencybackend/auth"
	"github.com/camden-git/agencybackend/models"
	"github.com/camden-git/agencybackend/repository"
	"github.com/camden-git/agencybackend/validation"
)

const (
	msgSetupComplete     = "Setup has already been completed"
	msgFailedCreateAdmin = "Failed to create first admin"
)

type SetupHandler struct {
	Admins repository.AdminRepositoryInterface
	Log    logrus.FieldLogger
}

func NewSetupHandler(admins repository.AdminRepositoryInterface, log logrus.FieldLogger) *SetupHandler {
	return &SetupHandler{Admins: admins, Log: log}
}

// CreateFirstAdmin handles POST /api/setup. It only succeeds while no admin
// exists; afterwards accounts are created with agencyctl.
func (h *SetupHandler) CreateFirstAdmin(w http.ResponseWriter, r *http.Request) {
	count, err := h.Admins.Count(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("failed to count admins")
		writeError(w, http.StatusInternalServerError, msgFailedCreateAdmin)
		return
	}
	if count > 0 {
		writeError(w, http.StatusForbidden, msgSetupComplete)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}
	input, err := validation.DecodeAdminInput(body)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}

	admin := &models.Admin{Email: input.Email}
	if err := admin.SetPassword(input.Password); err != nil {
		h.Log.WithError(err).Error("failed to hash password")
		writeError(w, http.StatusInternalServerError, msgFailedCreateAdmin)
		return
	}

	if err := h.Admins.CreateFirst(r.Context(), admin); err != nil {
		if errors.Is(err, repository.ErrSetupComplete) {
			writeError(w, http.StatusForbidden, msgSetupComplete)
			return
		}
		h.Log.WithError(err).Error("failed to create first admin")
		writeError(w, http.StatusInternalServerError, msgFailedCreateAdmin)
		return
	}

	h.Log.WithField("admin", admin.Email).Info("created initial admin")
	writeData(w, http.StatusCreated, sessionResponse{User: auth.User{ID: admin.ID, Email: admin.Email}})
}
