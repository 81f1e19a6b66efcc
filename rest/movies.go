package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"moviehub/errs"
	"moviehub/movie"
)

const defaultType = "movie"

var (
	errNoData       = errs.Errorf(errs.EPROTOCOL, "movie API response has no data")
	errNoPagination = errs.Errorf(errs.EPROTOCOL, "movie API response has no pagination")
)

type pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// pageEnvelope carries either a pagination block or the paginator fields at
// the top level.
type pageEnvelope struct {
	Data        *[]movie.Movie `json:"data"`
	Pagination  *pagination    `json:"pagination"`
	CurrentPage *int           `json:"current_page"`
	LastPage    *int           `json:"last_page"`
	PerPage     int            `json:"per_page"`
	Total       int            `json:"total"`
}

func (e pageEnvelope) page() (movie.Page, error) {
	if e.Data == nil {
		return movie.Page{}, errNoData
	}
	p := movie.Page{Movies: *e.Data}
	switch {
	case e.Pagination != nil:
		p.CurrentPage = e.Pagination.CurrentPage
		p.TotalPages = e.Pagination.LastPage
		p.PerPage = e.Pagination.PerPage
		p.Total = e.Pagination.Total
	case e.CurrentPage != nil && e.LastPage != nil:
		p.CurrentPage = *e.CurrentPage
		p.TotalPages = *e.LastPage
		p.PerPage = e.PerPage
		p.Total = e.Total
	default:
		return movie.Page{}, errNoPagination
	}
	return p, nil
}

type movieEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) ListMovies(ctx context.Context, page int, f movie.Filters) (movie.Page, error) {
	var env pageEnvelope
	if err := c.get(ctx, "/movies", filterQuery(page, f), &env); err != nil {
		return movie.Page{}, err
	}
	return env.page()
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int, f movie.Filters) (movie.Page, error) {
	q := filterQuery(page, f)
	q.Set("q", query)

	var env pageEnvelope
	if err := c.get(ctx, "/movies/search", q, &env); err != nil {
		return movie.Page{}, err
	}
	p, err := env.page()
	if err != nil {
		return movie.Page{}, err
	}
	for i := range p.Movies {
		if p.Movies[i].Type == "" {
			p.Movies[i].Type = defaultType
		}
	}
	return p, nil
}

func (c *Client) GetMovie(ctx context.Context, id string) (movie.Movie, error) {
	if id == "" {
		return movie.Movie{}, movie.ErrInvalidID
	}

	var env movieEnvelope
	if err := c.get(ctx, "/movies/"+url.PathEscape(id), nil, &env); err != nil {
		return movie.Movie{}, err
	}
	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 {
		return movie.Movie{}, errNoData
	}
	if bytes.Equal(raw, []byte("null")) {
		return movie.Movie{}, movie.ErrNotFound
	}
	var m movie.Movie
	if err := json.Unmarshal(raw, &m); err != nil {
		return movie.Movie{}, errs.Wrap(errs.EPROTOCOL, err, "malformed movie in response")
	}
	return m, nil
}

func filterQuery(page int, f movie.Filters) url.Values {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("genre", f.Genre)
	set("year", f.Year)
	set("rating", f.Rating)
	set("sort_by", string(f.SortBy))
	set("sort_order", string(f.SortOrder))
	return q
}
