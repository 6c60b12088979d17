package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/agencybackend/repository"
	"github.com/camden-git/agencybackend/validation"
)

const (
	msgArchiveNotFound     = "Archive not found"
	msgArchiveDeleted      = "Archive deleted"
	msgFailedListArchives  = "Failed to load archives"
	msgFailedCreateArchive = "Failed to create archive"
	msgFailedLoadArchive   = "Failed to load archive"
	msgFailedUpdateArchive = "Failed to update archive"
	msgFailedDeleteArchive = "Failed to delete archive"
)

type ArchiveHandler struct {
	Archives repository.ArchiveRepositoryInterface
	Models   repository.ModelRepositoryInterface
	Log      logrus.FieldLogger
}

func NewArchiveHandler(archives repository.ArchiveRepositoryInterface, modelRepo repository.ModelRepositoryInterface, log logrus.FieldLogger) *ArchiveHandler {
	return &ArchiveHandler{Archives: archives, Models: modelRepo, Log: log}
}

// ListModelArchives handles GET /api/models/{id}/archives
func (h *ArchiveHandler) ListModelArchives(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, "id")

	exists, err := h.Models.Exists(r.Context(), modelID)
	if err != nil {
		h.Log.WithError(err).Error("failed to check model for archive listing")
		writeError(w, http.StatusInternalServerError, msgFailedListArchives)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, msgModelNotFound)
		return
	}

	archives, err := h.Archives.ListByModel(r.Context(), modelID)
	if err != nil {
		h.Log.WithError(err).Error("failed to list archives")
		writeError(w, http.StatusInternalServerError, msgFailedListArchives)
		return
	}
	writeData(w, http.StatusOK, archives)
}

// CreateArchive handles POST /api/models/{id}/archives
func (h *ArchiveHandler) CreateArchive(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}
	input, err := validation.DecodeArchiveInput(body)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}

	archive := input.ToArchive(chi.URLParam(r, "id"))
	if err := h.Archives.Create(r.Context(), archive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgModelNotFound)
			return
		}
		h.Log.WithError(err).Error("failed to create archive")
		writeError(w, http.StatusInternalServerError, msgFailedCreateArchive)
		return
	}

	h.Log.WithFields(logrus.Fields{"archive": archive.ID, "model": archive.ModelID, "admin": actor(r)}).Info("archive created")
	writeData(w, http.StatusCreated, archive)
}

// GetArchive handles GET /api/archives/{id}
func (h *ArchiveHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	archive, err := h.Archives.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgArchiveNotFound)
			return
		}
		h.Log.WithError(err).Error("failed to get archive")
		writeError(w, http.StatusInternalServerError, msgFailedLoadArchive)
		return
	}
	writeData(w, http.StatusOK, archive)
}

// UpdateArchive handles PATCH /api/archives/{id}
func (h *ArchiveHandler) UpdateArchive(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}
	patch, err := validation.DecodeArchivePatch(body)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}

	archive, err := h.Archives.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgArchiveNotFound)
			return
		}
		h.Log.WithError(err).Error("failed to update archive")
		writeError(w, http.StatusInternalServerError, msgFailedUpdateArchive)
		return
	}
	writeData(w, http.StatusOK, archive)
}

// DeleteArchive handles DELETE /api/archives/{id}
func (h *ArchiveHandler) DeleteArchive(w http.ResponseWriter, r *http.Request) {
	if err := h.Archives.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgArchiveNotFound)
			return
		}
		h.Log.WithError(err).Error("failed to delete archive")
		writeError(w, http.StatusInternalServerError, msgFailedDeleteArchive)
		return
	}
	writeMessage(w, http.StatusOK, msgArchiveDeleted)
}
