package catalog

import (
	"cmp"
	"strings"
)

// Kind names one browsable level of the catalog hierarchy
type Kind string

const (
	KindUniversity Kind = "university"
	KindDegree     Kind = "degree"
	KindSemester   Kind = "semester"
	KindSubject    Kind = "subject"
)

// Kinds lists the levels from the root down
var Kinds = []Kind{KindUniversity, KindDegree, KindSemester, KindSubject}

// Level describes how one hierarchy level is stored, filtered and ordered.
// Every query the fetcher issues is derived from this table.
type Level struct {
	Kind         Kind
	Table        string
	ParentKind   Kind   // empty for the root level
	ParentKey    string // foreign key column pointing at the parent row
	ActiveColumn string
	OrderBy      string // canonical SQL ordering
	compare      func(a, b Entity) int
}

var levels = map[Kind]Level{
	KindUniversity: {
		Kind:         KindUniversity,
		Table:        "universities",
		ActiveColumn: "is_active",
		OrderBy:      "name ASC, id ASC",
		compare:      byName,
	},
	KindDegree: {
		Kind:         KindDegree,
		Table:        "degrees",
		ParentKind:   KindUniversity,
		ParentKey:    "university_id",
		ActiveColumn: "is_active",
		OrderBy:      "name ASC, id ASC",
		compare:      byName,
	},
	KindSemester: {
		Kind:         KindSemester,
		Table:        "semesters",
		ParentKind:   KindDegree,
		ParentKey:    "degree_id",
		ActiveColumn: "is_active",
		OrderBy:      "semester_number ASC, id ASC",
		compare:      byNumber,
	},
	KindSubject: {
		Kind:         KindSubject,
		Table:        "subjects",
		ParentKind:   KindSemester,
		ParentKey:    "semester_id",
		ActiveColumn: "is_active",
		OrderBy:      "name ASC, id ASC",
		compare:      byName,
	},
}

// LevelOf returns the table entry for kind
func LevelOf(kind Kind) (Level, bool) {
	level, ok := levels[kind]
	return level, ok
}

// ParseKind accepts singular and plural level names ("degree", "degrees")
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	if k == "universitie" {
		k = KindUniversity
	}
	_, ok := levels[k]
	return k, ok
}

// IsRoot reports whether the level has no parent
func (l Level) IsRoot() bool {
	return l.ParentKind == ""
}

// Compare orders two entities of this level canonically
func (l Level) Compare(a, b Entity) int {
	if c := l.compare(a, b); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

// Child returns the level directly below kind
func (k Kind) Child() (Kind, bool) {
	for i, candidate := range Kinds {
		if candidate == k && i+1 < len(Kinds) {
			return Kinds[i+1], true
		}
	}
	return "", false
}

// Plural is used for route segments and table-ish labels
func (k Kind) Plural() string {
	if k == KindUniversity {
		return "universities"
	}
	return string(k) + "s"
}

func byName(a, b Entity) int {
	return cmp.Compare(a.Name, b.Name)
}

func byNumber(a, b Entity) int {
	return cmp.Compare(a.Number, b.Number)
}
