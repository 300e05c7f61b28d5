// Package catalogtest provides an in-memory catalog.Store for tests.
package catalogtest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sahilchouksey/examace-vault/catalog"
)

// Store keeps entities in memory and counts every call it receives.
// It deliberately returns rows unfiltered and unordered so callers'
// filtering and ordering are exercised.
type Store struct {
	mu       sync.Mutex
	entities []catalog.Entity

	ListErr error
	GetErr  error

	listCalls int
	getCalls  map[catalog.Kind]int
}

// NewStore seeds a store with entities
func NewStore(entities ...catalog.Entity) *Store {
	return &Store{entities: entities, getCalls: map[catalog.Kind]int{}}
}

// Add appends more entities
func (s *Store) Add(entities ...catalog.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = append(s.entities, entities...)
}

func (s *Store) ListChildren(ctx context.Context, level catalog.Level, parentID *uuid.UUID) ([]catalog.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	var out []catalog.Entity
	for _, e := range s.entities {
		if e.Kind != level.Kind {
			continue
		}
		if parentID != nil && e.ParentID != nil && *e.ParentID != *parentID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) GetEntity(ctx context.Context, level catalog.Level, id uuid.UUID) (catalog.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls[level.Kind]++
	if s.GetErr != nil {
		return catalog.Entity{}, s.GetErr
	}

	for _, e := range s.entities {
		if e.Kind == level.Kind && e.ID == id {
			return e, nil
		}
	}
	return catalog.Entity{}, catalog.ErrNotFound
}

// ListCalls is the number of ListChildren calls so far
func (s *Store) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// GetCalls is the number of GetEntity calls for kind
func (s *Store) GetCalls(kind catalog.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls[kind]
}

// TotalGetCalls sums GetEntity calls over all kinds
func (s *Store) TotalGetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.getCalls {
		total += n
	}
	return total
}

// Tree is a small ready-made catalog: one university with one degree,
// one semester and one subject.
type Tree struct {
	University, Degree, Semester, Subject catalog.Entity
	Store                                 *Store
}

// NewTree builds the fixture tree
func NewTree() Tree {
	uni := Entity(catalog.KindUniversity, "Rajiv Gandhi Proudyogiki Vishwavidyalaya", nil)
	uni.Code = "RGPV"
	degree := Entity(catalog.KindDegree, "Master of Computer Applications", &uni.ID)
	degree.Code = "MCA"
	semester := Entity(catalog.KindSemester, "Semester 3", &degree.ID)
	semester.Number = 3
	subject := Entity(catalog.KindSubject, "Artificial Intelligence", &semester.ID)
	subject.Code = "MCA-302"

	store := NewStore(uni, degree, semester, subject)
	return Tree{University: uni, Degree: degree, Semester: semester, Subject: subject, Store: store}
}

// Entity builds an active entity with a fresh id
func Entity(kind catalog.Kind, name string, parentID *uuid.UUID) catalog.Entity {
	var parent *uuid.UUID
	if parentID != nil {
		p := *parentID
		parent = &p
	}
	return catalog.Entity{ID: uuid.New(), Kind: kind, ParentID: parent, Name: name, Active: true}
}
