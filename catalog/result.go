package catalog

import "github.com/google/uuid"

// Status discriminates the outcome of one listing
type Status string

const (
	StatusOK      Status = "ok"      // at least one item
	StatusEmpty   Status = "empty"   // query succeeded with zero rows
	StatusFailed  Status = "failed"  // transport or query error
	StatusSkipped Status = "skipped" // required ancestor id missing, nothing requested
)

// Result is what a level load produced. A failed load and an empty level
// are different results even though both render without cards.
type Result struct {
	Kind     Kind       `json:"kind"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Status   Status     `json:"status"`
	Entities []Entity   `json:"items"`
	Reason   string     `json:"reason,omitempty"`
	Err      error      `json:"-"`
}

func succeeded(kind Kind, parentID *uuid.UUID, entities []Entity) Result {
	status := StatusOK
	if len(entities) == 0 {
		status = StatusEmpty
		entities = []Entity{}
	}
	return Result{Kind: kind, ParentID: parentID, Status: status, Entities: entities}
}

func failed(kind Kind, parentID *uuid.UUID, err error) Result {
	return Result{Kind: kind, ParentID: parentID, Status: StatusFailed, Entities: []Entity{}, Reason: err.Error(), Err: err}
}

func skipped(kind Kind) Result {
	return Result{Kind: kind, Status: StatusSkipped, Entities: []Entity{}}
}

// Items returns the entities, empty for failed and skipped loads
func (r Result) Items() []Entity {
	if r.Entities == nil {
		return []Entity{}
	}
	return r.Entities
}

// Failed reports whether the load hit an error
func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

// Find returns the loaded entity with the given id
func (r Result) Find(id uuid.UUID) (Entity, bool) {
	for _, e := range r.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}
