package movie

import "strings"

type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortTitle      SortKey = "title"
	SortYear       SortKey = "year"
	SortRating     SortKey = "rating"
	SortPopularity SortKey = "popularity"
	SortDateAdded  SortKey = "created_at"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	switch k {
	case SortRelevance, SortTitle, SortYear, SortRating, SortPopularity, SortDateAdded:
		return true
	}
	return false
}

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Filters narrows listing and search requests. Empty fields are not sent.
type Filters struct {
	Genre     string    `json:"genre,omitempty" yaml:"genre,omitempty"`
	Year      string    `json:"year,omitempty" yaml:"year,omitempty"`
	Rating    string    `json:"rating,omitempty" yaml:"rating,omitempty"`
	SortBy    SortKey   `json:"sort_by" yaml:"sort_by"`
	SortOrder SortOrder `json:"sort_order" yaml:"sort_order"`
}

// DefaultFilters sorts by date added, newest first.
func DefaultFilters() Filters {
	return Filters{
		SortBy:    SortDateAdded,
		SortOrder: SortDesc,
	}
}

// Normalize trims the free-text fields and restores the default sort for
// unknown keys or orders.
func (f Filters) Normalize() Filters {
	f.Genre = strings.TrimSpace(f.Genre)
	f.Year = strings.TrimSpace(f.Year)
	f.Rating = strings.TrimSpace(f.Rating)
	if !f.SortBy.Valid() {
		f.SortBy = SortDateAdded
	}
	if !f.SortOrder.Valid() {
		f.SortOrder = SortDesc
	}
	return f
}

// FilterPatch is a partial filter update, nil fields are left unchanged.
type FilterPatch struct {
	Genre     *string    `json:"genre"`
	Year      *string    `json:"year"`
	Rating    *string    `json:"rating"`
	SortBy    *SortKey   `json:"sort_by"`
	SortOrder *SortOrder `json:"sort_order"`
}

// Apply merges p into f.
func (p FilterPatch) Apply(f Filters) Filters {
	if p.Genre != nil {
		f.Genre = *p.Genre
	}
	if p.Year != nil {
		f.Year = *p.Year
	}
	if p.Rating != nil {
		f.Rating = *p.Rating
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		f.SortOrder = *p.SortOrder
	}
	return f.Normalize()
}
