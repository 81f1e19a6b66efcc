package httpserver

import (
	"net/http"

	"moviehub/movie"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterMovieRoutes(g *echo.Group) {
	g.GET("/state", s.handleState)
	g.GET("/movies", s.handleBrowse)
	g.GET("/movies/search", s.handleSearch)
	g.DELETE("/movies/search", s.handleClearSearch)
	g.GET("/movies/:id", s.handleMovie)
	g.PUT("/filters", s.handleSetFilters)
	g.DELETE("/filters", s.handleResetFilters)
	g.DELETE("/error", s.handleClearError)
}

// StateResponse is the controller snapshot plus the derived view fields.
type StateResponse struct {
	movie.State
	Visible []movie.Movie `json:"visible"`
	Status  movie.Status  `json:"status"`
}

func newStateResponse(st movie.State) StateResponse {
	return StateResponse{State: st, Visible: st.Visible(), Status: st.Status()}
}

func (s *Server) handleState(c echo.Context) error {
	return writeSuccess(c, http.StatusOK, newStateResponse(sessionOf(c).Movies.Snapshot()))
}

func (s *Server) handleBrowse(c echo.Context) error {
	page := 1
	if err := echo.QueryParamsBinder(c).Int("page", &page).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be a number")
	}

	movies := sessionOf(c).Movies
	if err := movies.FetchBrowse(c.Request().Context(), page); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, newStateResponse(movies.Snapshot()))
}

func (s *Server) handleSearch(c echo.Context) error {
	var (
		query string
		page  = 1
	)
	err := echo.QueryParamsBinder(c).
		String("q", &query).
		Int("page", &page).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be a number")
	}

	movies := sessionOf(c).Movies
	if err := movies.Search(c.Request().Context(), query, page); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, newStateResponse(movies.Snapshot()))
}

func (s *Server) handleClearSearch(c echo.Context) error {
	movies := sessionOf(c).Movies
	if err := movies.ClearSearch(c.Request().Context()); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, newStateResponse(movies.Snapshot()))
}

func (s *Server) handleMovie(c echo.Context) error {
	movies := sessionOf(c).Movies
	if err := movies.FetchMovieByID(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	current := movies.Snapshot().Current
	if current == nil {
		return movie.ErrNotFound
	}
	return writeSuccess(c, http.StatusOK, current)
}

func (s *Server) handleSetFilters(c echo.Context) error {
	var req FiltersRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, sessionOf(c).Movies.SetFilters(req.ToPatch()))
}

func (s *Server) handleResetFilters(c echo.Context) error {
	return writeSuccess(c, http.StatusOK, sessionOf(c).Movies.ResetFilters())
}

func (s *Server) handleClearError(c echo.Context) error {
	movies := sessionOf(c).Movies
	movies.ClearError()
	return writeSuccess(c, http.StatusOK, newStateResponse(movies.Snapshot()))
}
