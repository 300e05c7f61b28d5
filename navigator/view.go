// Package navigator is the drill-down state machine behind the catalog
// browser: it tracks the current view and the selected ancestors and loads
// the children of every level it enters.
package navigator

import "github.com/sahilchouksey/examace-vault/catalog"

// View is one screen of the drill-down
type View string

const (
	ViewHome         View = "home"
	ViewUniversities View = "universities"
	ViewDegrees      View = "degrees"
	ViewSemesters    View = "semesters"
	ViewSubjects     View = "subjects"
	ViewResources    View = "resources"
)

var listed = map[View]catalog.Kind{
	ViewUniversities: catalog.KindUniversity,
	ViewDegrees:      catalog.KindDegree,
	ViewSemesters:    catalog.KindSemester,
	ViewSubjects:     catalog.KindSubject,
}

// Kind is the catalog level whose cards the view shows. Home and the
// resource view list no catalog level.
func (v View) Kind() (catalog.Kind, bool) {
	k, ok := listed[v]
	return k, ok
}

// Valid reports whether v is a known view
func (v View) Valid() bool {
	_, ok := listed[v]
	return ok || v == ViewHome || v == ViewResources
}

func viewOf(kind catalog.Kind) View {
	for v, k := range listed {
		if k == kind {
			return v
		}
	}
	return ViewHome
}

// depth is the index of kind in catalog.Kinds, -1 when unknown
func depth(kind catalog.Kind) int {
	for i, k := range catalog.Kinds {
		if k == kind {
			return i
		}
	}
	return -1
}

// parentKind is the level whose selection a view depends on
func (v View) parentKind() (catalog.Kind, bool) {
	if v == ViewResources {
		return catalog.KindSubject, true
	}
	k, ok := v.Kind()
	if !ok {
		return "", false
	}
	level, _ := catalog.LevelOf(k)
	if level.IsRoot() {
		return "", false
	}
	return level.ParentKind, true
}

// next is the view entered after selecting a card of kind
func next(kind catalog.Kind) View {
	if child, ok := kind.Child(); ok {
		return viewOf(child)
	}
	return ViewResources
}
