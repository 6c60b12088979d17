package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups models on the public site.
type Category string

const (
	CategoryAll      Category = "ALL"
	CategoryInTown   Category = "INTOWN"
	CategoryUpcoming Category = "UPCOMING"
)

// Categories lists every valid Category in display order.
var Categories = []Category{CategoryAll, CategoryInTown, CategoryUpcoming}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Model is a person profile represented by the agency.
type Model struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"not null"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;not null"`
	Category     Category  `json:"category" gorm:"type:varchar(16);not null;default:ALL;index"`
	Nationality  string    `json:"nationality" gorm:"not null"`
	ProfileImage string    `json:"profileImage" gorm:"not null"`
	Images       []string  `json:"images" gorm:"serializer:json"`
	Bio          *string   `json:"bio"`
	Height       *int      `json:"height"`
	Measurements *string   `json:"measurements"`
	Instagram    *string   `json:"instagram"`
	Archives     []Archive `json:"archives,omitempty" gorm:"foreignKey:ModelID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Model) TableName() string {
	return "models"
}

// BeforeCreate assigns an identifier and normalizes the image list.
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Images == nil {
		m.Images = []string{}
	}
	if m.Category == "" {
		m.Category = CategoryAll
	}
	return nil
}
