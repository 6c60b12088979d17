package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/camden-git/agencybackend/models"
)

// ModelRepository handles database operations for Model entities
type ModelRepository struct {
	DB *gorm.DB
}

func NewModelRepository(db *gorm.DB) *ModelRepository {
	return &ModelRepository{DB: db}
}

// Create inserts a new model. A duplicate slug yields ErrConflict.
func (r *ModelRepository) Create(ctx context.Context, model *models.Model) error {
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create model %s: %w", model.Slug, translate(err))
	}
	return nil
}

// List returns one page of models, newest first, together with the total
// number of models matching the same filter. Both queries run concurrently.
func (r *ModelRepository) List(ctx context.Context, opts ModelListOptions) ([]models.Model, int64, error) {
	if opts.Category != "" && !opts.Category.Valid() {
		return []models.Model{}, 0, nil
	}

	filtered := func(db *gorm.DB) *gorm.DB {
		q := db.Model(&models.Model{})
		if opts.Category != "" && opts.Category != models.CategoryAll {
			q = q.Where("category = ?", opts.Category)
		}
		return q
	}

	var (
		items []models.Model
		total int64
	)

	offset, inRange := pageOffset(opts.Page, opts.Limit)

	g, gctx := errgroup.WithContext(ctx)
	if inRange {
		g.Go(func() error {
			err := filtered(r.DB.WithContext(gctx)).
				Order("created_at DESC").
				Order("id DESC").
				Offset(offset).
				Limit(opts.Limit).
				Find(&items).Error
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		if err := filtered(r.DB.WithContext(gctx)).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count models: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if items == nil {
		items = []models.Model{}
	}
	return items, total, nil
}

// GetByID retrieves a model with its archives, newest archive first.
func (r *ModelRepository) GetByID(ctx context.Context, id string) (*models.Model, error) {
	var model models.Model
	err := r.DB.WithContext(ctx).
		Preload("Archives", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id DESC")
		}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get model by ID %s: %w", id, translate(err))
	}
	if model.Archives == nil {
		model.Archives = []models.Archive{}
	}
	return &model, nil
}

// SlugTaken reports whether another model already uses slug. excludeID may be
// empty; otherwise the model with that id is ignored.
// pageOffset returns (page-1)*limit. The second result is false when the
// product does not fit in an int, in which case no row can be on that page.
func pageOffset(page, limit int) (int, bool) {
	if page <= 1 || limit <= 0 {
		return 0, true
	}
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

// Exists reports whether a model with id is stored, without loading it.
func (r *ModelRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Model{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check model %s: %w", id, err)
	}
	return count > 0, nil
}

func (r *ModelRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Model{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug %s: %w", slug, err)
	}
	return count > 0, nil
}

// Update loads the model, applies patch and writes only the columns the
// patch touched. The returned model does not carry archives.
func (r *ModelRepository) Update(ctx context.Context, id string, patch ModelPatcher) (*models.Model, error) {
	var model models.Model
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			return err
		}

		columns := patch.Apply(&model)
		if len(columns) == 0 {
			return nil
		}

		model.UpdatedAt = time.Now()
		columns = append(columns, "updated_at")
		return tx.Model(&model).Select(columns).Updates(&model).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update model ID %s: %w", id, translate(err))
	}
	return &model, nil
}

// Delete removes a model and every archive it owns in a single transaction.
func (r *ModelRepository) Delete(ctx context.Context, id string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("model_id = ?", id).Delete(&models.Archive{}).Error; err != nil {
			return fmt.Errorf("failed to delete archives: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Model{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete model ID %s: %w", id, translate(err))
	}
	return nil
}
