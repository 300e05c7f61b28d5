package navigator

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/sahilchouksey/examace-vault/catalog"
)

// Crumb is one breadcrumb entry
type Crumb struct {
	Kind  catalog.Kind `json:"kind"`
	ID    uuid.UUID    `json:"id"`
	Label string       `json:"label"`
	Path  string       `json:"path"`
}

// Snapshot is everything a renderer needs for the current state
type Snapshot struct {
	View        View            `json:"view"`
	Path        string          `json:"path"`
	BackPath    string          `json:"back_path"`
	Header      string          `json:"header,omitempty"`
	Breadcrumbs []Crumb         `json:"breadcrumbs"`
	Items       *catalog.Result `json:"items,omitempty"`
	Resources   *ListingResult  `json:"resources,omitempty"`
}

// Snapshot captures the current state
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		View:        m.view,
		Path:        m.route().Path(),
		BackPath:    m.backPath(),
		Breadcrumbs: crumbs(m.chain),
	}

	switch m.view {
	case ViewHome:
	case ViewResources:
		listing := m.listing
		listing.Items = slices.Clone(listing.Items)
		s.Resources = &listing
		s.Header = header(m.chain)
	default:
		items := m.items
		items.Entities = slices.Clone(items.Entities)
		s.Items = &items
	}
	return s
}

func (m *Machine) backPath() string {
	view, keep, ok := m.backTarget()
	if ok {
		return routeOf(view, m.chain[:keep]).Path()
	}
	if n := len(m.history); n > 0 {
		return m.history[n-1].Path()
	}
	return "/"
}

func crumbs(chain []catalog.Entity) []Crumb {
	out := make([]Crumb, 0, len(chain))
	for i, e := range chain {
		out = append(out, Crumb{
			Kind:  e.Kind,
			ID:    e.ID,
			Label: e.Label(),
			Path:  routeOf(next(e.Kind), chain[:i+1]).Path(),
		})
	}
	return out
}

// header is the resource page title, "<degree code> - <semester> - <subject>"
func header(chain []catalog.Entity) string {
	if len(chain) < len(catalog.Kinds) {
		return ""
	}
	degree := chain[1].Code
	if degree == "" {
		degree = chain[1].Name
	}
	return fmt.Sprintf("%s - %s - %s", degree, chain[2].Label(), chain[3].Label())
}
