package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"moviehub/app"
	"moviehub/errs"
	"moviehub/movie"

	"github.com/spf13/cobra"
)

// MovieRow is one line of a listing.
type MovieRow struct {
	Key       string `json:"key" yaml:"key"`
	Title     string `json:"title" yaml:"title"`
	Year      string `json:"year" yaml:"year"`
	Rating    string `json:"rating,omitempty" yaml:"rating,omitempty"`
	Favorites int    `json:"favorites" yaml:"favorites"`
	Favorite  bool   `json:"favorite" yaml:"favorite"`
	Local     bool   `json:"local,omitempty" yaml:"local,omitempty"`
}

// Listing is a page of browse or search results.
type Listing struct {
	Query      string     `json:"query,omitempty" yaml:"query,omitempty"`
	Searched   bool       `json:"searched" yaml:"searched"`
	Page       int        `json:"page" yaml:"page"`
	TotalPages int        `json:"total_pages" yaml:"total_pages"`
	Movies     []MovieRow `json:"movies" yaml:"movies"`
}

type filterFlags struct {
	genre, year, rating, sortBy, sortOrder string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.genre, "genre", "", "only movies of this genre")
	cmd.Flags().StringVar(&f.year, "year", "", "release year or range such as 1990-1999")
	cmd.Flags().StringVar(&f.rating, "rating", "", "minimum rating")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "sort key (relevance|title|year|rating|popularity|created_at)")
	cmd.Flags().StringVar(&f.sortOrder, "order", "", "sort order (asc|desc)")
}

// patch returns the filters set on the command line; unset flags are left alone.
func (f *filterFlags) patch(cmd *cobra.Command) (movie.FilterPatch, error) {
	var p movie.FilterPatch
	flags := cmd.Flags()
	if flags.Changed("genre") {
		p.Genre = &f.genre
	}
	if flags.Changed("year") {
		p.Year = &f.year
	}
	if flags.Changed("rating") {
		p.Rating = &f.rating
	}
	if flags.Changed("sort") {
		k := movie.SortKey(f.sortBy)
		if !k.Valid() {
			return p, errs.Errorf(errs.EINVALID, "unknown sort key %q", f.sortBy)
		}
		p.SortBy = &k
	}
	if flags.Changed("order") {
		o := movie.SortOrder(f.sortOrder)
		if !o.Valid() {
			return p, errs.Errorf(errs.EINVALID, "unknown sort order %q", f.sortOrder)
		}
		p.SortOrder = &o
	}
	return p, nil
}

func newBrowseCommand(opts *RootOptions, open Opener) *cobra.Command {
	var (
		page    int
		filters filterFlags
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List the catalog page by page",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	filters.register(cmd)

	cmd.RunE = run(opts, open, func(ctx context.Context, s *app.Session, out *Printer, _ []string) error {
		patch, err := filters.patch(cmd)
		if err != nil {
			return err
		}
		s.Movies.SetFilters(patch)

		out.Logf("browsing page %d", page)
		if err := s.Movies.FetchBrowse(ctx, page); err != nil {
			return failed(err, s.Movies.Snapshot().Error)
		}
		return printListing(s, out)
	})
	return cmd
}

func newSearchCommand(opts *RootOptions, open Opener) *cobra.Command {
	var (
		page    int
		filters filterFlags
	)
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search movies by title, actor or keyword",
		Args:  cobra.ArbitraryArgs,
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	filters.register(cmd)

	cmd.RunE = run(opts, open, func(ctx context.Context, s *app.Session, out *Printer, args []string) error {
		patch, err := filters.patch(cmd)
		if err != nil {
			return err
		}
		s.Movies.SetFilters(patch)

		query := strings.Join(args, " ")
		out.Logf("searching %q page %d", query, page)
		if err := s.Movies.Search(ctx, query, page); err != nil {
			return failed(err, s.Movies.Snapshot().Error)
		}
		return printListing(s, out)
	})
	return cmd
}

func newShowCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of one movie",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = run(opts, open, func(ctx context.Context, s *app.Session, out *Printer, args []string) error {
		if err := s.Movies.FetchMovieByID(ctx, args[0]); err != nil {
			return failed(err, s.Movies.Snapshot().Error)
		}
		current := s.Movies.Snapshot().Current
		if current == nil {
			return movie.ErrNotFound
		}

		m := *current
		detail := struct {
			movie.Movie `yaml:",inline"`
			Favorite    bool `json:"favorite" yaml:"favorite"`
			Favorites   int  `json:"favorites" yaml:"favorites"`
		}{m, s.Movies.IsFavorite(m), s.Movies.FavoriteCount(m)}

		return out.Print(detail, func(w io.Writer) {
			writeDetail(w, m, detail.Favorite, detail.Favorites)
		})
	})
	return cmd
}

func printListing(s *app.Session, out *Printer) error {
	st := s.Movies.Snapshot()
	l := Listing{
		Query:      st.Query,
		Searched:   st.HasSearched,
		Page:       st.CurrentPage,
		TotalPages: st.TotalPages,
		Movies:     make([]MovieRow, 0, len(st.Visible())),
	}
	for _, m := range st.Visible() {
		l.Movies = append(l.Movies, rowOf(s, m))
	}
	return out.Print(l, func(w io.Writer) { writeListing(w, l) })
}

func rowOf(s *app.Session, m movie.Movie) MovieRow {
	return MovieRow{
		Key:       movieKey(s, m),
		Title:     m.Title,
		Year:      m.Year,
		Rating:    shown(m.IMDbRating),
		Favorites: s.Movies.FavoriteCount(m),
		Favorite:  s.Movies.IsFavorite(m),
		Local:     m.Local,
	}
}

// movieKey is the id the other commands accept for m.
func movieKey(s *app.Session, m movie.Movie) string {
	primary, secondary := m.CatalogKey(), m.DatabaseKey()
	if s.Favorites != nil && s.Favorites.ServerBacked() {
		primary, secondary = secondary, primary
	}
	if primary != "" {
		return primary
	}
	return secondary
}

func writeListing(w io.Writer, l Listing) {
	switch {
	case l.Searched && l.Query != "":
		fmt.Fprintf(w, "Results for %q, page %d of %d\n", l.Query, l.Page, l.TotalPages)
	default:
		fmt.Fprintf(w, "Page %d of %d\n", l.Page, l.TotalPages)
	}
	if len(l.Movies) == 0 {
		fmt.Fprintln(w, "No movies found.")
		return
	}
	for _, r := range l.Movies {
		mark := " "
		if r.Favorite {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s (%s)  [%s]", mark, r.Title, r.Year, r.Key)
		if r.Rating != "" {
			fmt.Fprintf(w, "  rating %s", r.Rating)
		}
		fmt.Fprintf(w, "  favorites %d", r.Favorites)
		if r.Local {
			fmt.Fprint(w, "  (from this page)")
		}
		fmt.Fprintln(w)
	}
}

func writeDetail(w io.Writer, m movie.Movie, favorite bool, favorites int) {
	fmt.Fprintf(w, "%s (%s)\n", m.Title, m.Year)
	fields := []struct{ label, value string }{
		{"Rated", m.Rated},
		{"Released", m.Released},
		{"Runtime", m.Runtime},
		{"Genre", m.Genre},
		{"Director", m.Director},
		{"Writer", m.Writer},
		{"Actors", m.Actors},
		{"Language", m.Language},
		{"Country", m.Country},
		{"Awards", m.Awards},
		{"IMDb rating", m.IMDbRating},
	}
	for _, f := range fields {
		if v := shown(f.value); v != "" {
			fmt.Fprintf(w, "%s: %s\n", f.label, v)
		}
	}
	for _, r := range m.Ratings {
		fmt.Fprintf(w, "  %s: %s\n", r.Source, r.Value)
	}
	if v := shown(m.Plot); v != "" {
		fmt.Fprintf(w, "\n%s\n\n", v)
	}
	mark := "no"
	if favorite {
		mark = "yes"
	}
	fmt.Fprintf(w, "Favorite: %s (%d)\n", mark, favorites)
}

// shown drops blank and "N/A" catalog values.
func shown(v string) string {
	v = strings.TrimSpace(v)
	if v == movie.NotAvailable {
		return ""
	}
	return v
}
