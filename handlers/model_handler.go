package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/agencybackend/models"
	"github.com/camden-git/agencybackend/repository"
	"github.com/camden-git/agencybackend/validation"
)

const (
	msgModelNotFound     = "Model not found"
	msgSlugExists        = "Slug already exists"
	msgModelDeleted      = "Model deleted"
	msgFailedListModels  = "Failed to load models"
	msgFailedCreateModel = "Failed to create model"
	msgFailedLoadModel   = "Failed to load model"
	msgFailedUpdateModel = "Failed to update model"
	msgFailedDeleteModel = "Failed to delete model"
)

// Pagination holds the page size used when a list request gives none and
// the largest page size a client may ask for.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

type ModelHandler struct {
	Models     repository.ModelRepositoryInterface
	Pagination Pagination
	Log        logrus.FieldLogger
}

func NewModelHandler(repo repository.ModelRepositoryInterface, pagination Pagination, log logrus.FieldLogger) *ModelHandler {
	return &ModelHandler{Models: repo, Pagination: pagination, Log: log}
}

type paginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

type modelListResponse struct {
	Data       []models.Model `json:"data"`
	Pagination paginationMeta `json:"pagination"`
}

// modelDetail always renders the archives array, even when it is empty.
type modelDetail struct {
	*models.Model
	Archives []models.Archive `json:"archives"`
}

// ListModels handles GET /api/models?category=&page=&limit=
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := positiveIntOrDefault(query.Get("page"), 1)
	limit := min(positiveIntOrDefault(query.Get("limit"), h.Pagination.DefaultLimit), h.Pagination.MaxLimit)

	items, total, err := h.Models.List(r.Context(), repository.ModelListOptions{
		Category: models.Category(query.Get("category")),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.Log.WithError(err).Error("failed to list models")
		writeError(w, http.StatusInternalServerError, msgFailedListModels)
		return
	}

	writeJSON(w, http.StatusOK, modelListResponse{
		Data: items,
		Pagination: paginationMeta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: int64(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// CreateModel handles POST /api/models
func (h *ModelHandler) CreateModel(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}
	input, err := validation.DecodeModelInput(body)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}

	taken, err := h.Models.SlugTaken(r.Context(), input.Slug, "")
	if err != nil {
		h.Log.WithError(err).Error("failed to check slug before create")
		writeError(w, http.StatusInternalServerError, msgFailedCreateModel)
		return
	}
	if taken {
		writeError(w, http.StatusConflict, msgSlugExists)
		return
	}

	model := input.ToModel()
	if err := h.Models.Create(r.Context(), model); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			writeError(w, http.StatusConflict, msgSlugExists)
			return
		}
		h.Log.WithError(err).Error("failed to create model")
		writeError(w, http.StatusInternalServerError, msgFailedCreateModel)
		return
	}

	h.Log.WithFields(logrus.Fields{"model": model.ID, "slug": model.Slug, "admin": actor(r)}).Info("model created")
	writeData(w, http.StatusCreated, model)
}

// GetModel handles GET /api/models/{id}
func (h *ModelHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	model, err := h.Models.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgModelNotFound)
			return
		}
		h.Log.WithError(err).Error("failed to get model")
		writeError(w, http.StatusInternalServerError, msgFailedLoadModel)
		return
	}

	writeData(w, http.StatusOK, modelDetail{Model: model, Archives: model.Archives})
}

// UpdateModel handles PATCH /api/models/{id}
func (h *ModelHandler) UpdateModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := readBody(w, r)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}
	patch, err := validation.DecodeModelPatch(body)
	if err != nil {
		writeInputError(w, h.Log, err)
		return
	}

	if patch.Empty() {
		h.unchanged(w, r, id)
		return
	}

	if patch.Slug != nil {
		taken, err := h.Models.SlugTaken(r.Context(), *patch.Slug, id)
		if err != nil {
			h.Log.WithError(err).Error("failed to check slug before update")
			writeError(w, http.StatusInternalServerError, msgFailedUpdateModel)
			return
		}
		if taken {
			h.conflictOrNotFound(w, r, id)
			return
		}
	}

	model, err := h.Models.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, msgModelNotFound)
		case errors.Is(err, repository.ErrConflict):
			writeError(w, http.StatusConflict, msgSlugExists)
		default:
			h.Log.WithError(err).Error("failed to update model")
			writeError(w, http.StatusInternalServerError, msgFailedUpdateModel)
		}
		return
	}

	writeData(w, http.StatusOK, model)
}

// unchanged answers a patch with no fields by returning the stored model.
func (h *ModelHandler) unchanged(w http.ResponseWriter, r *http.Request, id string) {
	model, err := h.Models.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgModelNotFound)
			return
		}
		h.Log.WithError(err).Error("failed to load model for empty update")
		writeError(w, http.StatusInternalServerError, msgFailedUpdateModel)
		return
	}
	model.Archives = nil
	writeData(w, http.StatusOK, model)
}

// conflictOrNotFound answers an update whose slug is taken. A missing target
// still wins with 404.
func (h *ModelHandler) conflictOrNotFound(w http.ResponseWriter, r *http.Request, id string) {
	exists, err := h.Models.Exists(r.Context(), id)
	switch {
	case err == nil && exists:
		writeError(w, http.StatusConflict, msgSlugExists)
	case err == nil:
		writeError(w, http.StatusNotFound, msgModelNotFound)
	default:
		h.Log.WithError(err).Error("failed to load model during update")
		writeError(w, http.StatusInternalServerError, msgFailedUpdateModel)
	}
}

// DeleteModel handles DELETE /api/models/{id}. Owned archives go with it.
func (h *ModelHandler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Models.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgModelNotFound)
			return
		}
		h.Log.WithError(err).Error("failed to delete model")
		writeError(w, http.StatusInternalServerError, msgFailedDeleteModel)
		return
	}

	h.Log.WithFields(logrus.Fields{"model": id, "admin": actor(r)}).Info("model deleted")
	writeMessage(w, http.StatusOK, msgModelDeleted)
}

// positiveIntOrDefault parses a positive integer query value, falling back
// when the value is missing, malformed or not positive.
func positiveIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
