package movie

import (
	"context"
	"errors"
	"strings"
	"sync"

	"moviehub/errs"
	"moviehub/favorite"
	"moviehub/pkg/logger"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const MsgFavoriteFailed = "Failed to update favorites"

var ErrFavoritesDisabled = errs.Errorf(errs.ENOTIMPLEMENTED, "favorites are not configured")

// Gateway is the remote movie catalog.
type Gateway interface {
	ListMovies(ctx context.Context, page int, f Filters) (Page, error)
	SearchMovies(ctx context.Context, query string, page int, f Filters) (Page, error)
	GetMovie(ctx context.Context, id string) (Movie, error)
}

type Service interface {
	FetchBrowse(ctx context.Context, page int) error
	Search(ctx context.Context, query string, page int) error
	ClearSearch(ctx context.Context) error
	SetFilters(p FilterPatch) Filters
	ResetFilters() Filters
	FetchMovieByID(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, m Movie) (favorite.Result, error)
	LoadFavoritesFromStorage(ctx context.Context)
	IsFavorite(m Movie) bool
	FavoriteCount(m Movie) int
	ClearError()
	Snapshot() State
}

// EmptyQueryMode selects what a blank search does.
type EmptyQueryMode int

const (
	// EmptyQueryClear drops back to the browse set.
	EmptyQueryClear EmptyQueryMode = iota
	// EmptyQueryList lists the whole catalog into the search set.
	EmptyQueryList
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// State is a point-in-time copy of everything the controller exposes.
type State struct {
	Browse         []Movie        `json:"browse" yaml:"browse"`
	Search         []Movie        `json:"search" yaml:"search"`
	Current        *Movie         `json:"current" yaml:"current"`
	HasSearched    bool           `json:"has_searched" yaml:"has_searched"`
	Query          string         `json:"query" yaml:"query"`
	CurrentPage    int            `json:"current_page" yaml:"current_page"`
	TotalPages     int            `json:"total_pages" yaml:"total_pages"`
	Loading        bool           `json:"loading" yaml:"loading"`
	Error          string         `json:"error,omitempty" yaml:"error,omitempty"`
	Filters        Filters        `json:"filters" yaml:"filters"`
	FavoriteIDs    []string       `json:"favorite_ids" yaml:"favorite_ids"`
	FavoriteCounts map[string]int `json:"favorite_counts" yaml:"favorite_counts"`
}

// Visible returns the search set while a search is active, the browse set otherwise.
func (s State) Visible() []Movie {
	if s.HasSearched {
		return s.Search
	}
	return s.Browse
}

func (s State) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Error != "":
		return StatusError
	}
	return StatusIdle
}

type slot int

const (
	slotBrowse slot = iota
	slotSearch
	slotDetail
)

type Option func(c *Controller)

// WithFallback sets the gateway used once when a browse request fails.
func WithFallback(g Gateway) Option {
	return func(c *Controller) {
		c.fallback = g
	}
}

func WithEmptyQuery(mode EmptyQueryMode) Option {
	return func(c *Controller) {
		c.emptyQuery = mode
	}
}

func WithFavorites(f favorite.Service) Option {
	return func(c *Controller) {
		c.favorites = f
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// Controller owns the browse, search and detail state of one UI session.
// Every slot keeps a sequence number; results of a call that was overtaken
// by a newer call on the same slot are dropped.
type Controller struct {
	gateway    Gateway
	fallback   Gateway
	favorites  favorite.Service
	emptyQuery EmptyQueryMode
	log        *zap.SugaredLogger

	mu      sync.Mutex
	state   State
	seq     map[slot]uint64
	pending map[slot]uint64
}

func NewController(g Gateway, opts ...Option) *Controller {
	c := &Controller{
		gateway: g,
		log:     logger.NOOPLogger,
		state: State{
			Browse:      []Movie{},
			Search:      []Movie{},
			CurrentPage: 1,
			TotalPages:  1,
			Filters:     DefaultFilters(),
		},
		seq:     make(map[slot]uint64),
		pending: make(map[slot]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.LoadFavoritesFromStorage(context.Background())
	return c
}

func (c *Controller) FetchBrowse(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	token := c.begin(slotBrowse)
	filters := c.state.Filters
	c.mu.Unlock()

	c.log.Debugw("fetch browse", "page", page)
	p, err := c.gateway.ListMovies(ctx, page, filters)
	if err != nil && c.fallback != nil {
		c.log.Warnw("browse failed, trying fallback gateway", "error", err)
		if fp, ferr := c.fallback.ListMovies(ctx, page, filters); ferr == nil {
			p, err = fp, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(slotBrowse, token) {
		return nil
	}
	if err != nil {
		c.state.Error = messageOf(err, MsgFetchFailed)
		return err
	}
	c.state.Browse = p.Displayable()
	c.state.CurrentPage = p.CurrentPage
	c.state.TotalPages = p.TotalPages
	return nil
}

func (c *Controller) Search(ctx context.Context, query string, page int) error {
	if strings.TrimSpace(query) == "" {
		if c.emptyQuery == EmptyQueryList {
			return c.searchAll(ctx, page)
		}
		return c.ClearSearch(ctx)
	}
	if page < 1 {
		page = 1
	}

	if err := ValidateQuery(query); err != nil {
		c.mu.Lock()
		c.supersede(slotSearch)
		c.state.Search = []Movie{}
		c.state.Error = errs.ErrorMessage(err)
		c.state.HasSearched = true
		c.state.Query = query
		c.state.CurrentPage = 1
		c.state.TotalPages = 1
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	token := c.begin(slotSearch)
	c.state.HasSearched = true
	c.state.Query = query
	c.state.Search = []Movie{}
	filters := c.state.Filters
	browse := c.state.Browse
	c.mu.Unlock()

	c.log.Debugw("search", "query", query, "page", page)

	var (
		remote    Page
		remoteErr error
		local     []Movie
	)
	var remoteWG, localWG conc.WaitGroup
	remoteWG.Go(func() {
		remote, remoteErr = c.gateway.SearchMovies(ctx, query, page, filters)
	})
	localWG.Go(func() {
		local = FilterLocal(query, browse)
	})
	if r := localWG.WaitAndRecover(); r != nil {
		c.log.Errorw("local filter panicked", "error", r.AsError())
		local = nil
	}
	remoteWG.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(slotSearch, token) {
		return nil
	}
	if remoteErr != nil {
		c.state.Search = []Movie{}
		c.state.CurrentPage = 1
		c.state.TotalPages = 1
		c.state.Error = searchErrorMessage(remoteErr)
		return remoteErr
	}
	c.state.Search = Merge(local, remote.Displayable())
	c.state.CurrentPage = remote.CurrentPage
	c.state.TotalPages = remote.TotalPages
	return nil
}

// searchAll lists the catalog into the search set for a blank query.
func (c *Controller) searchAll(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	token := c.begin(slotSearch)
	c.state.HasSearched = true
	c.state.Query = ""
	filters := c.state.Filters
	c.mu.Unlock()

	p, err := c.gateway.ListMovies(ctx, page, filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(slotSearch, token) {
		return nil
	}
	if err != nil {
		c.state.Search = []Movie{}
		c.state.CurrentPage = 1
		c.state.TotalPages = 1
		c.state.Error = messageOf(err, MsgFetchFailed)
		return err
	}
	c.state.Search = p.Displayable()
	c.state.CurrentPage = p.CurrentPage
	c.state.TotalPages = p.TotalPages
	return nil
}

// ClearSearch leaves search mode. The browse set is refetched only when it is empty.
func (c *Controller) ClearSearch(ctx context.Context) error {
	c.mu.Lock()
	c.supersede(slotSearch)
	c.state.Search = []Movie{}
	c.state.Query = ""
	c.state.HasSearched = false
	c.state.Error = ""
	c.state.CurrentPage = 1
	c.state.TotalPages = 1
	empty := len(c.state.Browse) == 0
	c.mu.Unlock()

	if empty {
		return c.FetchBrowse(ctx, 1)
	}
	return nil
}

func (c *Controller) SetFilters(p FilterPatch) Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filters = p.Apply(c.state.Filters)
	return c.state.Filters
}

func (c *Controller) ResetFilters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filters = DefaultFilters()
	return c.state.Filters
}

func (c *Controller) FetchMovieByID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	c.mu.Lock()
	if id == "" {
		c.supersede(slotDetail)
		c.state.Current = nil
		c.state.Error = ErrInvalidID.Message
		c.mu.Unlock()
		return ErrInvalidID
	}
	token := c.begin(slotDetail)
	c.state.Current = nil
	c.mu.Unlock()

	m, err := c.gateway.GetMovie(ctx, id)
	if err == nil && !m.Displayable() {
		err = ErrNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(slotDetail, token) {
		return nil
	}
	if err != nil {
		c.state.Error = messageOf(err, MsgDetailFailed)
		return err
	}
	c.state.Current = &m
	return nil
}

// ToggleFavorite flips the favorite state of m using the counter the user
// currently sees.
func (c *Controller) ToggleFavorite(ctx context.Context, m Movie) (favorite.Result, error) {
	if c.favorites == nil {
		return favorite.Result{}, ErrFavoritesDisabled
	}

	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()

	key := c.favoriteKey(m)
	if key == "" {
		c.setError(favorite.ErrInvalidKey.Message)
		return favorite.Result{}, favorite.ErrInvalidKey
	}

	res, err := c.favorites.Toggle(ctx, key, c.favorites.Count(key, m.FavoritedByCount))
	if err != nil {
		c.log.Warnw("toggle favorite failed", "key", key, "error", err)
		c.setError(messageOf(err, MsgFavoriteFailed))
		return res, err
	}
	return res, nil
}

func (c *Controller) LoadFavoritesFromStorage(ctx context.Context) {
	if c.favorites != nil {
		c.favorites.Load(ctx)
	}
}

func (c *Controller) IsFavorite(m Movie) bool {
	if c.favorites == nil {
		return false
	}
	key := c.favoriteKey(m)
	return key != "" && c.favorites.Contains(key)
}

// FavoriteCount returns the counter shown for m, preferring values changed
// by toggles in this session.
func (c *Controller) FavoriteCount(m Movie) int {
	key := c.favoriteKey(m)
	if c.favorites == nil || key == "" {
		return m.FavoritedByCount
	}
	return c.favorites.Count(key, m.FavoritedByCount)
}

func (c *Controller) ClearError() {
	c.setError("")
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	s := c.state
	c.mu.Unlock()

	s.Browse = append([]Movie{}, s.Browse...)
	s.Search = append([]Movie{}, s.Search...)
	if s.Current != nil {
		current := *s.Current
		s.Current = &current
	}
	s.FavoriteIDs = []string{}
	s.FavoriteCounts = map[string]int{}
	if c.favorites != nil {
		s.FavoriteIDs = c.favorites.Keys()
		s.FavoriteCounts = c.favorites.Counts()
	}
	return s
}

func (c *Controller) favoriteKey(m Movie) string {
	if c.favorites != nil && c.favorites.ServerBacked() {
		return m.DatabaseKey()
	}
	return m.CatalogKey()
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.state.Error = msg
	c.mu.Unlock()
}

// begin starts a new invocation on s. Callers hold mu.
func (c *Controller) begin(s slot) uint64 {
	c.seq[s]++
	c.pending[s] = c.seq[s]
	c.state.Loading = true
	c.state.Error = ""
	return c.seq[s]
}

// finish reports whether token is still the latest invocation on s and, if
// so, marks it done. Callers hold mu.
func (c *Controller) finish(s slot, token uint64) bool {
	if c.seq[s] != token {
		return false
	}
	delete(c.pending, s)
	c.state.Loading = len(c.pending) > 0
	return true
}

// supersede drops whatever invocation is running on s. Callers hold mu.
func (c *Controller) supersede(s slot) {
	c.seq[s]++
	delete(c.pending, s)
	c.state.Loading = len(c.pending) > 0
}

func searchErrorMessage(err error) string {
	switch errs.ErrorStatus(err) {
	case 400:
		return MsgQueryInvalid
	case 422:
		return MsgQueryUnprocessable
	}
	return messageOf(err, MsgSearchFailed)
}

func messageOf(err error, fallback string) string {
	var e *errs.Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
