package movie

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"moviehub/errs"
)

// NotAvailable is the catalog sentinel for a missing value.
const NotAvailable = "N/A"

const (
	MsgQueryTooShort      = "Search query must be at least 2 characters long"
	MsgQueryMeaningless   = "Please use meaningful search terms like movie titles, actor names, or keywords."
	MsgQueryInvalid       = "Search query too short or invalid. Please use at least 3 characters."
	MsgQueryUnprocessable = "Invalid search query. Please try with different keywords."
	MsgSearchFailed       = "Failed to search movies"
	MsgFetchFailed        = "Failed to fetch movies"
	MsgDetailFailed       = "Failed to fetch movie details"
)

var (
	ErrQueryTooShort    = errs.Errorf(errs.EINVALID, MsgQueryTooShort)
	ErrQueryMeaningless = errs.Errorf(errs.EINVALID, MsgQueryMeaningless)
	ErrInvalidID        = errs.Errorf(errs.EINVALID, "invalid movie id")
	ErrNotFound         = errs.Errorf(errs.ENOTFOUND, "movie not found")
)

type Rating struct {
	Source string `json:"Source" yaml:"source"`
	Value  string `json:"Value" yaml:"value"`
}

// Movie is a read-only catalog record. ID is the backend database id and
// IMDbID the external catalog id; either may be empty.
type Movie struct {
	ID               int64      `json:"id,omitempty" yaml:"id,omitempty"`
	IMDbID           string     `json:"imdbID,omitempty" yaml:"imdb_id,omitempty"`
	Title            string     `json:"title" yaml:"title"`
	Year             string     `json:"year,omitempty" yaml:"year,omitempty"`
	Rated            string     `json:"rated,omitempty" yaml:"rated,omitempty"`
	Released         string     `json:"released,omitempty" yaml:"released,omitempty"`
	Runtime          string     `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Genre            string     `json:"genre,omitempty" yaml:"genre,omitempty"`
	Director         string     `json:"director,omitempty" yaml:"director,omitempty"`
	Writer           string     `json:"writer,omitempty" yaml:"writer,omitempty"`
	Actors           string     `json:"actors,omitempty" yaml:"actors,omitempty"`
	Plot             string     `json:"plot,omitempty" yaml:"plot,omitempty"`
	Language         string     `json:"language,omitempty" yaml:"language,omitempty"`
	Country          string     `json:"country,omitempty" yaml:"country,omitempty"`
	Awards           string     `json:"awards,omitempty" yaml:"awards,omitempty"`
	Poster           string     `json:"poster,omitempty" yaml:"poster,omitempty"`
	Ratings          []Rating   `json:"ratings,omitempty" yaml:"ratings,omitempty"`
	IMDbRating       string     `json:"imdbRating,omitempty" yaml:"imdb_rating,omitempty"`
	Type             string     `json:"type,omitempty" yaml:"type,omitempty"`
	FavoritedByCount int        `json:"favorited_by_count" yaml:"favorited_by_count"`
	CreatedAt        *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`

	// Local marks records surfaced by the in-memory filter rather than the remote search.
	Local bool `json:"is_local,omitempty" yaml:"is_local,omitempty"`
}

// Displayable reports whether the record carries an identifier and a real title and year.
func (m Movie) Displayable() bool {
	if m.ID == 0 && strings.TrimSpace(m.IMDbID) == "" {
		return false
	}
	return present(m.Title) && present(m.Year)
}

// HasPoster reports whether Poster points at an image.
func (m Movie) HasPoster() bool {
	return present(m.Poster)
}

// DatabaseKey is the favorite key of a server-backed record, empty without an id.
func (m Movie) DatabaseKey() string {
	if m.ID <= 0 {
		return ""
	}
	return strconv.FormatInt(m.ID, 10)
}

// CatalogKey is the favorite key of a client-only record, empty without a catalog id.
func (m Movie) CatalogKey() string {
	return strings.TrimSpace(m.IMDbID)
}

// Same reports whether two records describe the same movie: matching catalog
// ids when both carry one, or matching title and year.
func Same(a, b Movie) bool {
	if a.IMDbID != "" && a.IMDbID == b.IMDbID {
		return true
	}
	return a.Title == b.Title && a.Year == b.Year
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// UnmarshalJSON accepts the shapes the movie API serves: numeric or string
// ids, OMDb field casing and loosely formatted timestamps.
func (m *Movie) UnmarshalJSON(data []byte) error {
	type plain Movie
	var w struct {
		plain
		ID        json.RawMessage `json:"id"`
		CreatedAt string          `json:"created_at"`
		UpdatedAt string          `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := ParseID(string(w.ID))
	if err != nil {
		return err
	}

	*m = Movie(w.plain)
	m.ID = id
	m.CreatedAt = parseTime(w.CreatedAt)
	m.UpdatedAt = parseTime(w.UpdatedAt)
	return nil
}

// ParseID reads a database id given as a number, a quoted number or null.
func ParseID(raw string) (int64, error) {
	s := strings.Trim(strings.TrimSpace(raw), `"`)
	if s == "" || s == "null" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func parseTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func present(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != NotAvailable
}

// Page is one page of catalog records as reported by a gateway.
type Page struct {
	Movies      []Movie `json:"data"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"last_page"`
	PerPage     int     `json:"per_page"`
	Total       int     `json:"total"`
}

// Displayable returns the page records that can be presented, in order.
func (p Page) Displayable() []Movie {
	out := make([]Movie, 0, len(p.Movies))
	for _, m := range p.Movies {
		if m.Displayable() {
			out = append(out, m)
		}
	}
	return out
}
