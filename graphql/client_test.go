package graphql_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moviehub/errs"
	"moviehub/graphql"
	"moviehub/movie"
	"moviehub/rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newClient(t *testing.T, body string, got *captured) *graphql.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return graphql.New(rest.New(srv.URL, time.Second))
}

const pageBody = `{"data": {"%s": {
	"data": [{"id": "4", "imdbID": "tt0113277", "title": "Heat", "year": "1995", "is_favorited": true}],
	"pagination": {"current_page": 1, "last_page": 2, "per_page": 12, "total": 13, "has_more_pages": true}
}}}`

func body(field string) string {
	return fmt.Sprintf(pageBody, field)
}

func TestListMovies(t *testing.T) {
	t.Run("should send list variables and read the page", func(t *testing.T) {
		var got captured
		client := newClient(t, body("movies"), &got)

		p, err := client.ListMovies(context.Background(), 0, movie.Filters{Genre: "Crime", Rating: "8"})

		require.NoError(t, err)
		assert.Contains(t, got.Query, "movies(")
		assert.Equal(t, map[string]interface{}{
			"page":      float64(1),
			"limit":     float64(12),
			"genre":     "Crime",
			"sortBy":    "created_at",
			"sortOrder": "desc",
		}, got.Variables)
		require.Len(t, p.Movies, 1)
		assert.Equal(t, int64(4), p.Movies[0].ID)
		assert.Equal(t, 2, p.TotalPages)
		assert.Equal(t, 13, p.Total)
	})

	t.Run("should reject pages without pagination", func(t *testing.T) {
		client := newClient(t, `{"data": {"movies": {"data": []}}}`, nil)

		_, err := client.ListMovies(context.Background(), 1, movie.DefaultFilters())

		assert.Equal(t, errs.EPROTOCOL, errs.ErrorCode(err))
	})

	t.Run("should reject missing data", func(t *testing.T) {
		client := newClient(t, `{"data": null}`, nil)

		_, err := client.ListMovies(context.Background(), 1, movie.DefaultFilters())

		assert.Equal(t, errs.EPROTOCOL, errs.ErrorCode(err))
	})
}

func TestSearchMovies(t *testing.T) {
	t.Run("should send the query with relevance sorting by default", func(t *testing.T) {
		var got captured
		client := newClient(t, body("searchMovies"), &got)

		_, err := client.SearchMovies(context.Background(), "heat", 2, movie.Filters{Rating: "7"})

		require.NoError(t, err)
		assert.Contains(t, got.Query, "searchMovies(")
		assert.Equal(t, "heat", got.Variables["query"])
		assert.Equal(t, float64(2), got.Variables["page"])
		assert.Equal(t, "7", got.Variables["rating"])
		assert.Equal(t, "relevance", got.Variables["sortBy"])
		assert.NotContains(t, got.Variables, "genre")
	})

	t.Run("should join graphql errors", func(t *testing.T) {
		client := newClient(t, `{"errors": [{"message": "bad sort"}, {"message": "bad page"}], "data": null}`, nil)

		_, err := client.SearchMovies(context.Background(), "heat", 1, movie.DefaultFilters())

		assert.Equal(t, errs.EPROTOCOL, errs.ErrorCode(err))
		assert.Equal(t, "GraphQL Error: bad sort, bad page", errs.ErrorMessage(err))
	})
}

func TestGetMovie(t *testing.T) {
	t.Run("should read the movie", func(t *testing.T) {
		var got captured
		client := newClient(t, `{"data": {"movie": {"id": 4, "title": "Heat", "year": "1995"}}}`, &got)

		m, err := client.GetMovie(context.Background(), "4")

		require.NoError(t, err)
		assert.Equal(t, "4", got.Variables["id"])
		assert.Equal(t, "Heat", m.Title)
	})

	t.Run("should report null movies as not found", func(t *testing.T) {
		client := newClient(t, `{"data": {"movie": null}}`, nil)

		_, err := client.GetMovie(context.Background(), "4")

		assert.ErrorIs(t, err, movie.ErrNotFound)
	})

	t.Run("should pass transport errors through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := graphql.New(rest.New(srv.URL, time.Second)).GetMovie(context.Background(), "4")

		assert.Equal(t, errs.ETRANSPORT, errs.ErrorCode(err))
	})
}
