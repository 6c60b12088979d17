package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/camden-git/agencybackend/models"
)

// AdminRepository handles database operations for Admin accounts
type AdminRepository struct {
	DB *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

// Create stores a new admin. A duplicate email yields ErrConflict.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	admin.Email = models.NormalizeEmail(admin.Email)
	if err := r.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin %s: %w", admin.Email, translate(err))
	}
	return nil
}

// CreateFirst stores admin only while no admin exists yet; otherwise it
// returns ErrSetupComplete. The check and insert share one transaction.
func (r *AdminRepository) CreateFirst(ctx context.Context, admin *models.Admin) error {
	admin.Email = models.NormalizeEmail(admin.Email)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Admin{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count existing admins in transaction: %w", err)
		}
		if count > 0 {
			return ErrSetupComplete
		}
		return tx.Create(admin).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create first admin: %w", translate(err))
	}
	return nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to get admin by ID %s: %w", id, translate(err))
	}
	return &admin, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	email = models.NormalizeEmail(email)
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to get admin by email %s: %w", email, translate(err))
	}
	return &admin, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
