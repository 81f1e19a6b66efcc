package httpserver

import (
	"net/http"

	"moviehub/movie"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterFavoriteRoutes(g *echo.Group) {
	g.GET("/favorites", s.handleListFavorites)
	g.POST("/favorites/toggle", s.handleToggleFavorite)
}

type favoritesResponse struct {
	Data         []string       `json:"data"`
	Counts       map[string]int `json:"counts"`
	ServerBacked bool           `json:"server_backed"`
}

func (s *Server) handleListFavorites(c echo.Context) error {
	favorites := sessionOf(c).Favorites
	return writeSuccess(c, http.StatusOK, favoritesResponse{
		Data:         favorites.Keys(),
		Counts:       favorites.Counts(),
		ServerBacked: favorites.ServerBacked(),
	})
}

func (s *Server) handleToggleFavorite(c echo.Context) error {
	var req ToggleFavoriteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	movies := sessionOf(c).Movies
	m := findMovie(movies.Snapshot(), req.ID, req.IMDbID)
	res, err := movies.ToggleFavorite(c.Request().Context(), m)
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, res)
}

// findMovie looks the record up in the session state so the toggle starts
// from the counter the user sees. Unknown movies are toggled by id alone.
func findMovie(st movie.State, id int64, imdbID string) movie.Movie {
	match := func(m movie.Movie) bool {
		if id != 0 {
			return m.ID == id
		}
		return m.IMDbID == imdbID
	}
	if st.Current != nil && match(*st.Current) {
		return *st.Current
	}
	for _, set := range [][]movie.Movie{st.Search, st.Browse} {
		for _, m := range set {
			if match(m) {
				return m
			}
		}
	}
	return movie.Movie{ID: id, IMDbID: imdbID}
}
