package repository

import (
	"context"

	"github.com/camden-git/agencybackend/models"
)

// ModelListOptions selects one page of models. An empty or ALL category
// disables filtering.
type ModelListOptions struct {
	Category models.Category
	Page     int
	Limit    int
}

// ModelPatcher applies a partial update to a loaded model and returns the
// columns it changed.
type ModelPatcher interface {
	Apply(m *models.Model) []string
}

// ArchivePatcher is the archive counterpart of ModelPatcher.
type ArchivePatcher interface {
	Apply(a *models.Archive) []string
}

// ModelRepositoryInterface defines the methods for model data operations
type ModelRepositoryInterface interface {
	Create(ctx context.Context, model *models.Model) error
	List(ctx context.Context, opts ModelListOptions) ([]models.Model, int64, error)
	GetByID(ctx context.Context, id string) (*models.Model, error)
	Exists(ctx context.Context, id string) (bool, error)
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	Update(ctx context.Context, id string, patch ModelPatcher) (*models.Model, error)
	Delete(ctx context.Context, id string) error
}

// ArchiveRepositoryInterface defines the methods for archive data operations
type ArchiveRepositoryInterface interface {
	Create(ctx context.Context, archive *models.Archive) error
	GetByID(ctx context.Context, id string) (*models.Archive, error)
	ListByModel(ctx context.Context, modelID string) ([]models.Archive, error)
	Update(ctx context.Context, id string, patch ArchivePatcher) (*models.Archive, error)
	Delete(ctx context.Context, id string) error
}

// AdminRepositoryInterface defines the methods for admin account operations
type AdminRepositoryInterface interface {
	Create(ctx context.Context, admin *models.Admin) error
	CreateFirst(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}
