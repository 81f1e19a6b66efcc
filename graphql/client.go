// Package graphql reads the movie catalog through the backend GraphQL endpoint.
package graphql

import (
	"context"
	"encoding/json"
	"strings"

	"moviehub/errs"
	"moviehub/movie"
)

// PageSize is the number of records requested per page.
const PageSize = 12

// Transport posts a request body and decodes the answer into out.
type Transport interface {
	Query(ctx context.Context, path string, body, out interface{}) error
}

// Client implements movie.Gateway. The transport must point at the GraphQL endpoint.
type Client struct {
	transport Transport
}

func New(t Transport) *Client {
	return &Client{transport: t}
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []gqlError                 `json:"errors"`
}

type pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type pageResult struct {
	Data       *[]movie.Movie `json:"data"`
	Pagination *pagination    `json:"pagination"`
}

func (c *Client) ListMovies(ctx context.Context, page int, f movie.Filters) (movie.Page, error) {
	vars := pageVariables(page, f, movie.SortDateAdded)
	return c.page(ctx, moviesQuery, "movies", vars)
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int, f movie.Filters) (movie.Page, error) {
	vars := pageVariables(page, f, movie.SortRelevance)
	vars["query"] = query
	if f.Rating != "" {
		vars["rating"] = f.Rating
	}
	return c.page(ctx, searchMoviesQuery, "searchMovies", vars)
}

func (c *Client) GetMovie(ctx context.Context, id string) (movie.Movie, error) {
	if id == "" {
		return movie.Movie{}, movie.ErrInvalidID
	}

	raw, err := c.query(ctx, movieQuery, "movie", map[string]interface{}{"id": id})
	if err != nil {
		return movie.Movie{}, err
	}
	if isNull(raw) {
		return movie.Movie{}, movie.ErrNotFound
	}

	var m movie.Movie
	if err := json.Unmarshal(raw, &m); err != nil {
		return movie.Movie{}, errs.Wrap(errs.EPROTOCOL, err, "malformed movie in GraphQL response")
	}
	return m, nil
}

func (c *Client) page(ctx context.Context, query, field string, vars map[string]interface{}) (movie.Page, error) {
	raw, err := c.query(ctx, query, field, vars)
	if err != nil {
		return movie.Page{}, err
	}

	var res pageResult
	if isNull(raw) {
		return movie.Page{}, missing(field)
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return movie.Page{}, errs.Wrap(errs.EPROTOCOL, err, "malformed page in GraphQL response")
	}
	if res.Data == nil {
		return movie.Page{}, missing(field + ".data")
	}
	if res.Pagination == nil {
		return movie.Page{}, missing(field + ".pagination")
	}
	return movie.Page{
		Movies:      *res.Data,
		CurrentPage: res.Pagination.CurrentPage,
		TotalPages:  res.Pagination.LastPage,
		PerPage:     res.Pagination.PerPage,
		Total:       res.Pagination.Total,
	}, nil
}

// query runs one operation and returns the raw value of its root field.
func (c *Client) query(ctx context.Context, query, field string, vars map[string]interface{}) (json.RawMessage, error) {
	var resp response
	if err := c.transport.Query(ctx, "", request{Query: query, Variables: vars}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, errs.Errorf(errs.EPROTOCOL, "GraphQL Error: %s", strings.Join(msgs, ", "))
	}
	raw, ok := resp.Data[field]
	if !ok {
		return nil, missing(field)
	}
	return raw, nil
}

func pageVariables(page int, f movie.Filters, sortBy movie.SortKey) map[string]interface{} {
	if page < 1 {
		page = 1
	}
	if f.SortBy != "" {
		sortBy = f.SortBy
	}
	order := f.SortOrder
	if order == "" {
		order = movie.SortDesc
	}

	vars := map[string]interface{}{
		"page":      page,
		"limit":     PageSize,
		"sortBy":    string(sortBy),
		"sortOrder": string(order),
	}
	if f.Genre != "" {
		vars["genre"] = f.Genre
	}
	if f.Year != "" {
		vars["year"] = f.Year
	}
	return vars
}

func missing(field string) error {
	return errs.Errorf(errs.EPROTOCOL, "GraphQL response has no %s", field)
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
