package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moviehub/app"
	"moviehub/favorite"
	"moviehub/httpserver"
	"moviehub/movie"
	"moviehub/user"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSessionID = "6f1c2b9e-3d4a-4c8b-9a1e-2f5d7c8b0a11"
	mockCtx       = mock.Anything
)

type MockMovieService struct {
	mock.Mock
}

func (m *MockMovieService) FetchBrowse(ctx context.Context, page int) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockMovieService) Search(ctx context.Context, query string, page int) error {
	args := m.Called(ctx, query, page)
	return args.Error(0)
}

func (m *MockMovieService) ClearSearch(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMovieService) SetFilters(p movie.FilterPatch) movie.Filters {
	args := m.Called(p)
	return args.Get(0).(movie.Filters)
}

func (m *MockMovieService) ResetFilters() movie.Filters {
	args := m.Called()
	return args.Get(0).(movie.Filters)
}

func (m *MockMovieService) FetchMovieByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMovieService) ToggleFavorite(ctx context.Context, mv movie.Movie) (favorite.Result, error) {
	args := m.Called(ctx, mv)
	return args.Get(0).(favorite.Result), args.Error(1)
}

func (m *MockMovieService) LoadFavoritesFromStorage(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockMovieService) IsFavorite(mv movie.Movie) bool {
	args := m.Called(mv)
	return args.Bool(0)
}

func (m *MockMovieService) FavoriteCount(mv movie.Movie) int {
	args := m.Called(mv)
	return args.Int(0)
}

func (m *MockMovieService) ClearError() {
	m.Called()
}

func (m *MockMovieService) Snapshot() movie.State {
	args := m.Called()
	return args.Get(0).(movie.State)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, c user.Credentials) (user.User, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, r user.Registration) (user.User, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockAuthService) CheckAuth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, p user.ProfileUpdate) (user.User, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, p user.PasswordChange) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, p user.PasswordReset) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockAuthService) ResendVerification(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, link string) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockAuthService) ClearSession(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockAuthService) IsAuthenticated() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAuthService) CurrentUser() (user.User, bool) {
	args := m.Called()
	return args.Get(0).(user.User), args.Bool(1)
}

func (m *MockAuthService) NeedsPasswordChange() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) Load(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockFavoriteService) ServerBacked() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockFavoriteService) Contains(key string) bool {
	args := m.Called(key)
	return args.Bool(0)
}

func (m *MockFavoriteService) Count(key string, fallback int) int {
	args := m.Called(key, fallback)
	return args.Int(0)
}

func (m *MockFavoriteService) Keys() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockFavoriteService) Counts() map[string]int {
	args := m.Called()
	return args.Get(0).(map[string]int)
}

func (m *MockFavoriteService) Toggle(ctx context.Context, key string, displayed int) (favorite.Result, error) {
	args := m.Called(ctx, key, displayed)
	return args.Get(0).(favorite.Result), args.Error(1)
}

type testServer struct {
	*httpserver.Server
	Movies    *MockMovieService
	Auth      *MockAuthService
	Favorites *MockFavoriteService
	built     []string
}

// newTestServer serves every session from the same set of mocks and records
// the session ids it was asked to build.
func newTestServer(t *testing.T, options ...httpserver.Options) *testServer {
	t.Helper()
	ts := &testServer{
		Movies:    new(MockMovieService),
		Auth:      new(MockAuthService),
		Favorites: new(MockFavoriteService),
	}
	sessions := httpserver.NewSessions(func(ctx context.Context, id string) *app.Session {
		ts.built = append(ts.built, id)
		return &app.Session{ID: id, Auth: ts.Auth, Favorites: ts.Favorites, Movies: ts.Movies}
	}, time.Minute)

	server, err := httpserver.New(append([]httpserver.Options{httpserver.WithSessions(sessions)}, options...)...)
	require.NoError(t, err)
	ts.Server = server
	return ts
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(httpserver.HeaderSessionID, testSessionID)
	rec := httptest.NewRecorder()
	ts.Router.ServeHTTP(rec, req)
	return rec
}

type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Info    string          `json:"info"`
}

func decodeAPIResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	resp := decodeAPIResponse(t, rec)
	require.NoError(t, json.Unmarshal(resp.Result, out), string(resp.Result))
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
