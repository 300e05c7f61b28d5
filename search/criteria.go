// Package search implements the home page resource search: the query
// criteria sent to the data backend, a keystroke debouncer and a session
// that drops stale responses.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/resources"
)

const (
	// ResultLimit caps the rows returned for a typed query
	ResultLimit = 50
	// RecentLimit caps the "recently added" rows shown while idle
	RecentLimit = 6
)

// Fields are the resource columns a term is matched against
var Fields = []string{"title", "subject", "course", "description"}

// Criteria is one server-side search request
type Criteria struct {
	Term          string
	Recent        bool // empty term: published rows flagged show_in_recent
	PublishedOnly bool
	Limit         int
}

// NewCriteria builds the request for a raw search box value
func NewCriteria(term string) Criteria {
	term = strings.TrimSpace(term)
	if term == "" {
		return Criteria{Recent: true, PublishedOnly: true, Limit: RecentLimit}
	}
	return Criteria{Term: term, PublishedOnly: true, Limit: ResultLimit}
}

// Pattern is the ILIKE operand for the term, with LIKE wildcards escaped
func (c Criteria) Pattern() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(c.Term) + "%"
}

// Where renders the OR-combined predicate over Fields and its arguments
func (c Criteria) Where() (string, []interface{}) {
	clauses := make([]string, 0, len(Fields))
	args := make([]interface{}, 0, len(Fields))
	pattern := c.Pattern()
	for _, f := range Fields {
		clauses = append(clauses, fmt.Sprintf("%s ILIKE ?", f))
		args = append(args, pattern)
	}
	return strings.Join(clauses, " OR "), args
}

// Matches applies the criteria to a single row. Stores that cannot push
// the predicate down use it, and so do tests.
func (c Criteria) Matches(r model.Resource) bool {
	if c.PublishedOnly && !r.IsPublished {
		return false
	}
	if c.Recent {
		return r.ShowInRecent
	}
	needle := strings.ToLower(c.Term)
	for _, v := range []string{r.Title, r.Subject, r.Course, r.Description} {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Store runs a search against the data backend, newest first
type Store interface {
	SearchResources(ctx context.Context, c Criteria) ([]model.Resource, error)
}

// Run executes the search for term and converts the rows to listings
func Run(ctx context.Context, store Store, term string) ([]resources.Listing, error) {
	c := NewCriteria(term)
	rows, err := store.SearchResources(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("search resources: %w", err)
	}

	out := make([]resources.Listing, 0, len(rows))
	for _, r := range rows {
		if c.PublishedOnly && !r.IsPublished {
			continue
		}
		out = append(out, resources.FromResource(r))
		if len(out) == c.Limit {
			break
		}
	}
	return out, nil
}
