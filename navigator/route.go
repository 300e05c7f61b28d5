package navigator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidRoute = errors.New("invalid navigation route")

// Route is a deep link into the catalog. Only the ids the path names are
// set; the subject resource route carries the subject alone and the
// chain above it is reconstructed from the data.
type Route struct {
	View         View
	UniversityID uuid.UUID
	DegreeID     uuid.UUID
	SemesterID   uuid.UUID
	SubjectID    uuid.UUID
}

// ParseRoute understands
//
//	/
//	/universities
//	/universities/:universityId
//	/universities/:universityId/degrees/:degreeId
//	/universities/:universityId/degrees/:degreeId/semesters/:semesterId
//	/subjects/:subjectId/resources
func ParseRoute(path string) (Route, error) {
	var segs []string
	for _, s := range strings.Split(strings.Trim(path, "/"), "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}

	if len(segs) == 0 {
		return Route{View: ViewHome}, nil
	}

	switch segs[0] {
	case "universities":
		return parseUniversityRoute(segs)
	case "subjects":
		if len(segs) != 3 || segs[2] != "resources" {
			return Route{}, fmt.Errorf("%w: %q", ErrInvalidRoute, path)
		}
		id, err := parseID(segs[1])
		if err != nil {
			return Route{}, err
		}
		return Route{View: ViewResources, SubjectID: id}, nil
	}
	return Route{}, fmt.Errorf("%w: %q", ErrInvalidRoute, path)
}

func parseUniversityRoute(segs []string) (Route, error) {
	r := Route{View: ViewUniversities}
	if len(segs) == 1 {
		return r, nil
	}

	var err error
	if r.UniversityID, err = parseID(segs[1]); err != nil {
		return Route{}, err
	}
	r.View = ViewDegrees

	switch len(segs) {
	case 2:
		return r, nil
	case 4:
		if segs[2] != "degrees" {
			break
		}
		if r.DegreeID, err = parseID(segs[3]); err != nil {
			return Route{}, err
		}
		r.View = ViewSemesters
		return r, nil
	case 6:
		if segs[2] != "degrees" || segs[4] != "semesters" {
			break
		}
		if r.DegreeID, err = parseID(segs[3]); err != nil {
			return Route{}, err
		}
		if r.SemesterID, err = parseID(segs[5]); err != nil {
			return Route{}, err
		}
		r.View = ViewSubjects
		return r, nil
	}
	return Route{}, fmt.Errorf("%w: /%s", ErrInvalidRoute, strings.Join(segs, "/"))
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad id %q", ErrInvalidRoute, s)
	}
	return id, nil
}

// Path renders the canonical URL of the route
func (r Route) Path() string {
	switch r.View {
	case ViewUniversities:
		return "/universities"
	case ViewDegrees:
		return fmt.Sprintf("/universities/%s", r.UniversityID)
	case ViewSemesters:
		return fmt.Sprintf("/universities/%s/degrees/%s", r.UniversityID, r.DegreeID)
	case ViewSubjects:
		return fmt.Sprintf("/universities/%s/degrees/%s/semesters/%s", r.UniversityID, r.DegreeID, r.SemesterID)
	case ViewResources:
		return fmt.Sprintf("/subjects/%s/resources", r.SubjectID)
	}
	return "/"
}
