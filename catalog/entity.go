package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sahilchouksey/examace-vault/model"
)

// Entity is the level-agnostic card shown by the navigator
type Entity struct {
	ID          uuid.UUID  `json:"id"`
	Kind        Kind       `json:"kind"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Name        string     `json:"name"`
	Code        string     `json:"code,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Number      int        `json:"semester_number,omitempty"`
	Active      bool       `json:"is_active"`
}

// Label is the text used for cards and breadcrumbs
func (e Entity) Label() string {
	if e.Kind == KindSemester && e.Name == "" {
		return fmt.Sprintf("Semester %d", e.Number)
	}
	return e.Name
}

// HasParent reports whether the entity points at parentID
func (e Entity) HasParent(parentID uuid.UUID) bool {
	return e.ParentID != nil && *e.ParentID == parentID
}

func FromUniversity(u model.University) Entity {
	return Entity{
		ID:       u.ID,
		Kind:     KindUniversity,
		Name:     u.Name,
		Code:     u.Code,
		Location: u.Location,
		Active:   u.IsActive,
	}
}

func FromDegree(d model.Degree) Entity {
	parent := d.UniversityID
	return Entity{
		ID:          d.ID,
		Kind:        KindDegree,
		ParentID:    &parent,
		Name:        d.Name,
		Code:        d.Code,
		Description: d.Description,
		Active:      d.IsActive,
	}
}

func FromSemester(s model.Semester) Entity {
	parent := s.DegreeID
	return Entity{
		ID:       s.ID,
		Kind:     KindSemester,
		ParentID: &parent,
		Name:     s.Name,
		Number:   s.Number,
		Active:   s.IsActive,
	}
}

func FromSubject(s model.Subject) Entity {
	parent := s.SemesterID
	return Entity{
		ID:          s.ID,
		Kind:        KindSubject,
		ParentID:    &parent,
		Name:        s.Name,
		Code:        s.Code,
		Description: s.Description,
		Active:      s.IsActive,
	}
}
