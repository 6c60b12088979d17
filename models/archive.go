package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Archive is a photo set owned by exactly one Model.
type Archive struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string    `json:"title" gorm:"not null"`
	Images    []string  `json:"images" gorm:"serializer:json"`
	ModelID   string    `json:"modelId" gorm:"type:varchar(36);not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (Archive) TableName() string {
	return "archives"
}

func (a *Archive) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	return nil
}
