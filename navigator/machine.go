package navigator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/resources"
)

var (
	ErrBrokenChain       = errors.New("route ancestors do not form a chain")
	ErrInvalidTransition = errors.New("invalid navigator transition")
)

const historyLimit = 50

// Loader loads catalog levels; *catalog.Fetcher implements it
type Loader interface {
	ListChildren(ctx context.Context, kind catalog.Kind, parentID *uuid.UUID) catalog.Result
	Get(ctx context.Context, kind catalog.Kind, id uuid.UUID) (catalog.Entity, error)
}

// ListingLoader loads a subject's resource page; *resources.Lister implements it
type ListingLoader interface {
	ListSubject(ctx context.Context, subjectID uuid.UUID) ([]resources.Listing, error)
}

// ListingResult is the leaf counterpart of catalog.Result
type ListingResult struct {
	Status catalog.Status      `json:"status"`
	Items  []resources.Listing `json:"items"`
	Reason string              `json:"reason,omitempty"`
	Err    error               `json:"-"`
}

// Machine is the navigator state. It is safe for concurrent use;
// transitions are serialised.
type Machine struct {
	loader Loader
	lister ListingLoader

	mu      sync.Mutex
	view    View
	chain   []catalog.Entity // selected ancestors from the university down
	items   catalog.Result
	listing ListingResult
	history []Route
}

// New creates a machine in the initial view, which must be home or
// universities. lister may be nil when the resource view is not used.
func New(ctx context.Context, loader Loader, lister ListingLoader, initial View) (*Machine, error) {
	if initial != ViewHome && initial != ViewUniversities {
		return nil, fmt.Errorf("%w: cannot start in %q", ErrInvalidTransition, initial)
	}
	m := &Machine{loader: loader, lister: lister}
	m.enter(ctx, initial, nil)
	return m, nil
}

// OpenCatalog moves from home to the university list
func (m *Machine) OpenCatalog(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.view != ViewHome {
		return fmt.Errorf("%w: catalog opened from %q", ErrInvalidTransition, m.view)
	}
	m.push()
	m.enter(ctx, ViewUniversities, nil)
	return nil
}

// Select advances one level, recording e as the newest ancestor and
// dropping every deeper selection.
func (m *Machine) Select(ctx context.Context, e catalog.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kind, ok := m.view.Kind()
	if !ok || e.Kind != kind {
		return fmt.Errorf("%w: %s card selected in %q", ErrInvalidTransition, e.Kind, m.view)
	}
	d := depth(kind)
	if len(m.chain) < d {
		return fmt.Errorf("%w: %s selected without its ancestors", ErrInvalidTransition, kind)
	}
	if d > 0 && !e.HasParent(m.chain[d-1].ID) {
		return fmt.Errorf("%w: %s %s does not belong to %s", ErrInvalidTransition, kind, e.ID, m.chain[d-1].ID)
	}

	chain := append(slices.Clone(m.chain[:d]), e)
	m.push()
	m.enter(ctx, next(kind), chain)
	return nil
}

// Back returns to the parent view, discarding the current level's
// selection. When the parent's own ancestors are unknown it falls back
// to the previous history entry.
func (m *Machine) Back(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	view, keep, ok := m.backTarget()
	if ok {
		m.popIf(routeOf(view, m.chain[:keep]))
		m.enter(ctx, view, slices.Clone(m.chain[:keep]))
		return nil
	}

	if n := len(m.history); n > 0 {
		prev := m.history[n-1]
		m.history = m.history[:n-1]
		return m.restore(ctx, prev)
	}
	m.enter(ctx, ViewHome, nil)
	return nil
}

// Restore re-enters the machine from a deep link. Ancestors named in the
// route are fetched independently and concurrently before the target
// level is loaded. On error the state is left unchanged.
func (m *Machine) Restore(ctx context.Context, r Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !r.View.Valid() {
		return fmt.Errorf("%w: unknown view %q", ErrInvalidRoute, r.View)
	}
	current := m.route()
	if err := m.restore(ctx, r); err != nil {
		return err
	}
	m.pushRoute(current)
	return nil
}

// Refresh reloads the current view, e.g. after a failed load
func (m *Machine) Refresh(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enter(ctx, m.view, m.chain)
}

// View is the current view
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Route is the canonical route of the current state
func (m *Machine) Route() Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.route()
}

// History returns the visited routes, oldest first
func (m *Machine) History() []Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.history)
}

func (m *Machine) restore(ctx context.Context, r Route) error {
	var (
		chain []catalog.Entity
		err   error
	)
	if r.View == ViewResources {
		chain, err = m.chainUpFrom(ctx, r.SubjectID)
	} else {
		chain, err = m.chainDown(ctx, r)
	}
	if err != nil {
		return err
	}
	m.enter(ctx, r.View, chain)
	return nil
}

// chainDown fetches the ancestors named by a top-down route concurrently.
// Missing ids end the chain; the target level then loads as skipped.
func (m *Machine) chainDown(ctx context.Context, r Route) ([]catalog.Entity, error) {
	ids := []uuid.UUID{r.UniversityID, r.DegreeID, r.SemesterID}
	needed := 0
	if pk, ok := r.View.parentKind(); ok {
		needed = depth(pk) + 1
	}

	var known []uuid.UUID
	for _, id := range ids[:needed] {
		if id == uuid.Nil {
			break
		}
		known = append(known, id)
	}

	chain := make([]catalog.Entity, len(known))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range known {
		g.Go(func() error {
			kind := catalog.Kinds[i]
			e, err := m.loader.Get(gctx, kind, id)
			if err != nil {
				return fmt.Errorf("restore %s %s: %w", kind, id, err)
			}
			chain[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := 1; i < len(chain); i++ {
		if !chain[i].HasParent(chain[i-1].ID) {
			return nil, fmt.Errorf("%w: %s %s is not under %s", ErrBrokenChain, chain[i].Kind, chain[i].ID, chain[i-1].ID)
		}
	}
	return chain, nil
}

// chainUpFrom rebuilds the chain from a subject id by following parent
// keys upwards; each step needs the previous one, so it is sequential.
func (m *Machine) chainUpFrom(ctx context.Context, subjectID uuid.UUID) ([]catalog.Entity, error) {
	if subjectID == uuid.Nil {
		return nil, nil
	}

	chain := make([]catalog.Entity, len(catalog.Kinds))
	id := subjectID
	for i := len(catalog.Kinds) - 1; i >= 0; i-- {
		kind := catalog.Kinds[i]
		e, err := m.loader.Get(ctx, kind, id)
		if err != nil {
			return nil, fmt.Errorf("restore %s %s: %w", kind, id, err)
		}
		chain[i] = e
		if i == 0 {
			break
		}
		if e.ParentID == nil {
			return nil, fmt.Errorf("%w: %s %s has no parent", ErrBrokenChain, kind, e.ID)
		}
		id = *e.ParentID
	}
	return chain, nil
}

// enter switches to view with the given ancestors and loads its content.
// A view whose required ancestor is missing issues no request.
func (m *Machine) enter(ctx context.Context, view View, chain []catalog.Entity) {
	m.view = view
	m.chain = chain
	m.items = catalog.Result{}
	m.listing = ListingResult{}

	switch view {
	case ViewHome:
	case ViewResources:
		m.listing = m.loadListing(ctx)
	default:
		kind, _ := view.Kind()
		m.items = m.loader.ListChildren(ctx, kind, m.parentID(view))
	}
}

func (m *Machine) loadListing(ctx context.Context) ListingResult {
	subjectID := m.parentID(ViewResources)
	if subjectID == nil || m.lister == nil {
		return ListingResult{Status: catalog.StatusSkipped, Items: []resources.Listing{}}
	}

	listings, err := m.lister.ListSubject(ctx, *subjectID)
	if err != nil {
		return ListingResult{Status: catalog.StatusFailed, Items: []resources.Listing{}, Reason: err.Error(), Err: err}
	}
	if len(listings) == 0 {
		return ListingResult{Status: catalog.StatusEmpty, Items: []resources.Listing{}}
	}
	return ListingResult{Status: catalog.StatusOK, Items: listings}
}

func (m *Machine) parentID(view View) *uuid.UUID {
	pk, ok := view.parentKind()
	if !ok {
		return nil
	}
	d := depth(pk)
	if len(m.chain) <= d {
		return nil
	}
	id := m.chain[d].ID
	return &id
}

// backTarget is the parent view and how many ancestors it keeps. ok is
// false when the parent view's own ancestors are not known.
func (m *Machine) backTarget() (View, int, bool) {
	switch m.view {
	case ViewHome, ViewUniversities:
		return ViewHome, 0, true
	}

	pk, _ := m.view.parentKind()
	keep := depth(pk)
	if len(m.chain) < keep {
		return "", 0, false
	}
	return viewOf(pk), keep, true
}

func (m *Machine) route() Route {
	return routeOf(m.view, m.chain)
}

func routeOf(view View, chain []catalog.Entity) Route {
	r := Route{View: view}
	for _, e := range chain {
		switch e.Kind {
		case catalog.KindUniversity:
			r.UniversityID = e.ID
		case catalog.KindDegree:
			r.DegreeID = e.ID
		case catalog.KindSemester:
			r.SemesterID = e.ID
		case catalog.KindSubject:
			r.SubjectID = e.ID
		}
	}
	return r
}

func (m *Machine) push() {
	m.pushRoute(m.route())
}

func (m *Machine) pushRoute(r Route) {
	m.history = append(m.history, r)
	if len(m.history) > historyLimit {
		m.history = slices.Clone(m.history[len(m.history)-historyLimit:])
	}
}

func (m *Machine) popIf(r Route) {
	if n := len(m.history); n > 0 && m.history[n-1] == r {
		m.history = m.history[:n-1]
	}
}
