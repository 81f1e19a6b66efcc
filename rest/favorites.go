package rest

import (
	"context"
	"net/http"
	"strconv"

	"moviehub/favorite"
	"moviehub/movie"
)

const msgToggleFailed = "Failed to toggle favorite"

type toggleRequest struct {
	MovieID int64 `json:"movie_id"`
}

type toggleResponse struct {
	envelope
	IsFavorited bool `json:"is_favorited"`
	Count       *int `json:"movie_favorite_count"`
}

// Toggle flips the favorite of the movie with database id key.
func (c *Client) Toggle(ctx context.Context, key string) (favorite.RemoteResult, error) {
	id, err := favoriteID(key)
	if err != nil {
		return favorite.RemoteResult{}, err
	}

	var resp toggleResponse
	if err := c.send(ctx, http.MethodPost, "/favorites/toggle", toggleRequest{MovieID: id}, &resp); err != nil {
		return favorite.RemoteResult{}, err
	}
	if err := resp.check(msgToggleFailed); err != nil {
		return favorite.RemoteResult{}, err
	}
	return favorite.RemoteResult{Favorited: resp.IsFavorited, Count: resp.Count}, nil
}

func (c *Client) Check(ctx context.Context, key string) (bool, error) {
	id, err := favoriteID(key)
	if err != nil {
		return false, err
	}

	var resp toggleResponse
	if err := c.get(ctx, "/favorites/check/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return false, err
	}
	if err := resp.check(msgToggleFailed); err != nil {
		return false, err
	}
	return resp.IsFavorited, nil
}

func favoriteID(key string) (int64, error) {
	id, err := movie.ParseID(key)
	if err != nil || id == 0 {
		return 0, favorite.ErrInvalidKey
	}
	return id, nil
}
