package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"moviehub/app"
	"moviehub/movie"

	"github.com/spf13/cobra"
)

// ToggleResult reports a favorite change.
type ToggleResult struct {
	Key       string `json:"key" yaml:"key"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Favorited bool   `json:"is_favorited" yaml:"is_favorited"`
	Count     int    `json:"favorite_count" yaml:"favorite_count"`
}

// FavoriteList is the persisted favorite set.
type FavoriteList struct {
	ServerBacked bool           `json:"server_backed" yaml:"server_backed"`
	Keys         []string       `json:"keys" yaml:"keys"`
	Counts       map[string]int `json:"counts,omitempty" yaml:"counts,omitempty"`
}

func newFavoriteCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Add a movie to favorites, or remove it when it is one already",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = run(opts, open, func(ctx context.Context, s *app.Session, out *Printer, args []string) error {
		m := lookup(ctx, s, out, args[0])

		res, err := s.Movies.ToggleFavorite(ctx, m)
		if err != nil {
			return failed(err, s.Movies.Snapshot().Error)
		}

		r := ToggleResult{Key: res.Key, Title: m.Title, Favorited: res.Favorited, Count: res.Count}
		return out.Print(r, func(w io.Writer) {
			name := r.Title
			if name == "" {
				name = r.Key
			}
			if r.Favorited {
				fmt.Fprintf(w, "Added %q to favorites (%d).\n", name, r.Count)
			} else {
				fmt.Fprintf(w, "Removed %q from favorites (%d).\n", name, r.Count)
			}
		})
	})
	return cmd
}

// lookup loads the movie so the toggle starts from its current counter.
// When the detail cannot be loaded the bare id is toggled.
func lookup(ctx context.Context, s *app.Session, out *Printer, id string) movie.Movie {
	id = strings.TrimSpace(id)
	if err := s.Movies.FetchMovieByID(ctx, id); err != nil {
		out.Logf("cannot load movie %s: %v", id, Message(err))
		s.Movies.ClearError()
	} else if current := s.Movies.Snapshot().Current; current != nil {
		return *current
	}

	if n, err := movie.ParseID(id); err == nil && n > 0 {
		return movie.Movie{ID: n}
	}
	return movie.Movie{IMDbID: id}
}

func newFavoritesCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List favorite movies",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = run(opts, open, func(ctx context.Context, s *app.Session, out *Printer, _ []string) error {
		l := FavoriteList{
			ServerBacked: s.Favorites.ServerBacked(),
			Keys:         s.Favorites.Keys(),
			Counts:       s.Favorites.Counts(),
		}
		return out.Print(l, func(w io.Writer) {
			if len(l.Keys) == 0 {
				fmt.Fprintln(w, "No favorites yet.")
				return
			}
			where := "this device"
			if l.ServerBacked {
				where = "your account"
			}
			fmt.Fprintf(w, "%d favorite(s) on %s:\n", len(l.Keys), where)
			for _, k := range l.Keys {
				if n, ok := l.Counts[k]; ok {
					fmt.Fprintf(w, "  %s  favorites %d\n", k, n)
				} else {
					fmt.Fprintf(w, "  %s\n", k)
				}
			}
		})
	})
	return cmd
}
