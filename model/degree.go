package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Degree represents an academic program (e.g., MCA, BCA)
type Degree struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UniversityID uuid.UUID      `gorm:"type:uuid;not null;index" json:"university_id"`
	Name         string         `gorm:"not null" json:"name"`
	Code         string         `gorm:"not null" json:"code"` // e.g., "MCA", "BCA"
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	IsActive     bool           `gorm:"default:true;index" json:"is_active"`

	// Relationships
	University *University `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"university,omitempty"`
	Semesters  []Semester  `gorm:"foreignKey:DegreeID;constraint:OnDelete:CASCADE" json:"semesters,omitempty"`
}

// Semester represents an academic term within a degree
type Semester struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DegreeID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"degree_id"`
	Number    int            `gorm:"column:semester_number;not null" json:"semester_number"` // 1, 2, 3, etc.
	Name      string         `gorm:"type:varchar(50)" json:"name"`                          // e.g., "Semester 1"
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`

	// Relationships
	Degree   *Degree   `gorm:"foreignKey:DegreeID;constraint:OnDelete:CASCADE" json:"degree,omitempty"`
	Subjects []Subject `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
}

// Subject represents an individual academic subject
type Subject struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	SemesterID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"semester_id"`
	Name        string         `gorm:"not null" json:"name"`
	Code        string         `gorm:"not null" json:"code"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`

	// Relationships
	Semester  *Semester       `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE" json:"semester,omitempty"`
	Resources []Resource      `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
	Articles  []SolvedArticle `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
}
