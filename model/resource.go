package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceType represents the kind of downloadable document
type ResourceType string

const (
	ResourceTypeQuestionPaper ResourceType = "question_paper" // Previous year question papers
	ResourceTypeSolvedPaper   ResourceType = "solved_paper"   // Papers with model answers
	ResourceTypeNotes         ResourceType = "notes"          // Study notes
)

// ResourceTypes lists every known resource type in display order
var ResourceTypes = []ResourceType{
	ResourceTypeQuestionPaper,
	ResourceTypeSolvedPaper,
	ResourceTypeNotes,
}

// Valid reports whether t is one of the known resource types
func (t ResourceType) Valid() bool {
	for _, known := range ResourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns the human readable name of the type ("question paper")
func (t ResourceType) Label() string {
	switch t {
	case ResourceTypeQuestionPaper:
		return "question paper"
	case ResourceTypeSolvedPaper:
		return "solved paper"
	case ResourceTypeNotes:
		return "notes"
	default:
		return string(t)
	}
}

// Resource represents a downloadable document attached to a subject
type Resource struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"subject_id"`
	DegreeID      *uuid.UUID     `gorm:"type:uuid;index" json:"degree_id,omitempty"` // Denormalized for degree-wide listings
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	Subject       string         `gorm:"type:varchar(255)" json:"subject"` // Subject label as printed on the paper
	Course        string         `gorm:"type:varchar(255)" json:"course"`
	Year          string         `gorm:"type:varchar(20)" json:"year"`
	ResourceType  ResourceType   `gorm:"type:varchar(20);not null;index" json:"resource_type"`
	FilePath      string         `gorm:"type:text;not null" json:"file_path"` // Absolute URL or key inside the storage bucket
	DownloadCount int64          `gorm:"default:0" json:"download_count"`
	IsPublished   bool           `gorm:"default:true;index" json:"is_published"`
	ShowInRecent  bool           `gorm:"default:false;index" json:"show_in_recent"`
}

// SolvedArticle is a solved paper stored as pre-rendered markup and shown as a page
type SolvedArticle struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"subject_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Year        string         `gorm:"type:varchar(20)" json:"year"`
	Content     string         `gorm:"type:text;not null" json:"content"` // HTML
	IsPublished bool           `gorm:"default:true;index" json:"is_published"`
}
