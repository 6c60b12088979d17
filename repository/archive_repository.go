package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/camden-git/agencybackend/models"
)

// ArchiveRepository handles database operations for Archive entities
type ArchiveRepository struct {
	DB *gorm.DB
}

func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{DB: db}
}

// Create inserts an archive for an existing model. A missing parent yields ErrNotFound.
func (r *ArchiveRepository) Create(ctx context.Context, archive *models.Archive) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent models.Model
		if err := tx.Select("id").Where("id = ?", archive.ModelID).First(&parent).Error; err != nil {
			return err
		}
		return tx.Create(archive).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create archive for model %s: %w", archive.ModelID, translate(err))
	}
	return nil
}

func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*models.Archive, error) {
	var archive models.Archive
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&archive).Error; err != nil {
		return nil, fmt.Errorf("failed to get archive by ID %s: %w", id, translate(err))
	}
	return &archive, nil
}

// ListByModel returns the archives owned by a model, newest first.
func (r *ArchiveRepository) ListByModel(ctx context.Context, modelID string) ([]models.Archive, error) {
	archives := []models.Archive{}
	err := r.DB.WithContext(ctx).
		Where("model_id = ?", modelID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&archives).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list archives for model %s: %w", modelID, err)
	}
	return archives, nil
}

func (r *ArchiveRepository) Update(ctx context.Context, id string, patch ArchivePatcher) (*models.Archive, error) {
	var archive models.Archive
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&archive).Error; err != nil {
			return err
		}

		columns := patch.Apply(&archive)
		if len(columns) == 0 {
			return nil
		}
		return tx.Model(&archive).Select(columns).Updates(&archive).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update archive ID %s: %w", id, translate(err))
	}
	return &archive, nil
}

func (r *ArchiveRepository) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Archive{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete archive ID %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete archive ID %s: %w", id, translate(gorm.ErrRecordNotFound))
	}
	return nil
}
