package resources

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/examace-vault/model"
)

// ListingKind tells the renderer how to open an entry
type ListingKind string

const (
	KindFile    ListingKind = "file"    // downloaded through Download
	KindArticle ListingKind = "article" // opened as an in-app page
)

// TypeAll is the filter value that keeps every listing
const TypeAll = "all"

// Listing is one row of a subject's resource page
type Listing struct {
	Kind          ListingKind        `json:"kind"`
	ID            uuid.UUID          `json:"id"`
	SubjectID     uuid.UUID          `json:"subject_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Subject       string             `json:"subject,omitempty"`
	Course        string             `json:"course,omitempty"`
	Year          string             `json:"year,omitempty"`
	ResourceType  model.ResourceType `json:"resource_type"`
	FilePath      string             `json:"file_path,omitempty"`
	DownloadCount int64              `json:"download_count"`
	CreatedAt     time.Time          `json:"created_at"`
}

// FromResource converts a stored resource into a file listing
func FromResource(r model.Resource) Listing {
	return Listing{
		Kind:          KindFile,
		ID:            r.ID,
		SubjectID:     r.SubjectID,
		Title:         r.Title,
		Description:   r.Description,
		Subject:       r.Subject,
		Course:        r.Course,
		Year:          r.Year,
		ResourceType:  r.ResourceType,
		FilePath:      r.FilePath,
		DownloadCount: r.DownloadCount,
		CreatedAt:     r.CreatedAt,
	}
}

// FromArticle converts a solved article into an article listing.
// Articles are solved papers, so they answer to the solved_paper filter.
func FromArticle(a model.SolvedArticle) Listing {
	return Listing{
		Kind:         KindArticle,
		ID:           a.ID,
		SubjectID:    a.SubjectID,
		Title:        a.Title,
		Description:  a.Description,
		Year:         a.Year,
		ResourceType: model.ResourceTypeSolvedPaper,
		CreatedAt:    a.CreatedAt,
	}
}

// FilterByType keeps listings of the given resource type. "all" (or an
// empty type) returns the input unchanged.
func FilterByType(listings []Listing, typeOrAll string) []Listing {
	if typeOrAll == "" || typeOrAll == TypeAll {
		return listings
	}

	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if string(l.ResourceType) == typeOrAll {
			out = append(out, l)
		}
	}
	return out
}

// ValidFilter reports whether typeOrAll is "all" or a known resource type
func ValidFilter(typeOrAll string) bool {
	return typeOrAll == "" || typeOrAll == TypeAll || model.ResourceType(typeOrAll).Valid()
}
