package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// University represents an educational institution, the root of the catalog
type University struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string         `gorm:"not null;index" json:"name"`
	Code      string         `gorm:"uniqueIndex;not null" json:"code"` // e.g., "RGPV", "DU"
	Location  string         `gorm:"type:varchar(255)" json:"location,omitempty"`
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Degrees []Degree `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"degrees,omitempty"`
}
