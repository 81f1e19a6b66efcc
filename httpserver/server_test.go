// nolint: funlen
package httpserver_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moviehub/app"
	"moviehub/errs"
	"moviehub/httpserver"
	"moviehub/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		server := newTestServer(t)

		assert.NotNil(t, server.Router, "Router should be initialized")
		assert.Equal(t, ":8080", server.Addr, "Default address should be :8080")
		assert.Equal(t, []string{"*"}, server.AllowOrigins, "Default CORS should allow all origins")
	})

	t.Run("should require sessions", func(t *testing.T) {
		_, err := httpserver.New()

		assert.Error(t, err)
	})

	t.Run("should take address and origins from config", func(t *testing.T) {
		cfg := &config.Config{Port: 9090, AllowOrigins: "https://a.example, https://b.example"}

		server := newTestServer(t, httpserver.WithConfig(cfg))

		assert.Equal(t, ":9090", server.Addr)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, server.AllowOrigins)
	})

	t.Run("should return option errors", func(t *testing.T) {
		failing := func(*httpserver.Server) error { return errors.New("boom") }

		_, err := httpserver.New(failing)

		assert.EqualError(t, err, "boom")
	})
}

func TestServerStartAndShutdown(t *testing.T) {
	// Arrange
	server := newTestServer(t)
	port := allocateRandomPort(t)
	server.Addr = fmt.Sprintf(":%d", port)

	// Act
	errChan := startServerAsync(server.Server)
	waitForServerReady(port)

	// Assert
	assertServerStopsGracefully(t, server.Server, errChan)
}

func TestRegisterGlobalMiddlewares(t *testing.T) {
	// Arrange
	server := newTestServer(t)
	addTestRoute(server.Server)

	// Act
	response := makeRequest(server.Server, http.MethodGet, "/test", nil)

	// Assert
	assert.Equal(t, http.StatusOK, response.Code)
	assert.NotEmpty(t, response.Header().Get(echo.HeaderXRequestID), "Request ID middleware should add header")
	assert.NotEmpty(t, response.Header().Get("X-Content-Type-Options"), "Secure middleware should add headers")
}

func TestCORSConfiguration(t *testing.T) {
	tests := []struct {
		name          string
		allowOrigins  []string
		requestOrigin string
		expectCORS    bool
	}{
		{
			name:          "wildcard allows all origins",
			allowOrigins:  []string{"*"},
			requestOrigin: "https://example.com",
			expectCORS:    true,
		},
		{
			name:          "specific origin is allowed",
			allowOrigins:  []string{"https://example.com"},
			requestOrigin: "https://example.com",
			expectCORS:    true,
		},
		{
			name:          "empty origins disables CORS",
			allowOrigins:  []string{},
			requestOrigin: "https://example.com",
			expectCORS:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			server := newTestServer(t, httpserver.WithAllowOrigins(tt.allowOrigins...))
			addTestRoute(server.Server)

			// Act
			response := makeRequest(server.Server, http.MethodGet, "/test", map[string]string{"Origin": tt.requestOrigin})

			// Assert
			corsHeader := response.Header().Get(echo.HeaderAccessControlAllowOrigin)
			if tt.expectCORS {
				assert.NotEmpty(t, corsHeader, "CORS header should be present")
			} else {
				assert.Empty(t, corsHeader, "CORS header should not be present")
			}
		})
	}
}

func TestSessionHeader(t *testing.T) {
	t.Run("should issue a session id when none is sent", func(t *testing.T) {
		server := newTestServer(t)
		server.Auth.On("Logout", mockCtx).Return()

		response := makeRequest(server.Server, http.MethodPost, "/api/auth/logout", nil)

		assert.Equal(t, http.StatusOK, response.Code)
		id := response.Header().Get(httpserver.HeaderSessionID)
		assert.Len(t, id, 36)
		assert.Equal(t, []string{id}, server.built)
	})

	t.Run("should replace a malformed session id", func(t *testing.T) {
		server := newTestServer(t)
		server.Auth.On("Logout", mockCtx).Return()

		response := makeRequest(server.Server, http.MethodPost, "/api/auth/logout", map[string]string{
			httpserver.HeaderSessionID: "../../etc/passwd",
		})

		assert.NotEqual(t, "../../etc/passwd", response.Header().Get(httpserver.HeaderSessionID))
	})

	t.Run("should reuse the session of a known id", func(t *testing.T) {
		server := newTestServer(t)
		server.Auth.On("Logout", mockCtx).Return()

		for i := 0; i < 3; i++ {
			response := server.do(http.MethodPost, "/api/auth/logout", nil)
			assert.Equal(t, testSessionID, response.Header().Get(httpserver.HeaderSessionID))
		}

		assert.Equal(t, []string{testSessionID}, server.built)
		server.Auth.AssertNumberOfCalls(t, "Logout", 3)
	})

	t.Run("should expose the session header to browsers", func(t *testing.T) {
		server := newTestServer(t)
		server.Auth.On("Logout", mockCtx).Return()

		response := makeRequest(server.Server, http.MethodPost, "/api/auth/logout", map[string]string{
			"Origin": "https://example.com",
		})

		assert.Contains(t, response.Header().Get(echo.HeaderAccessControlExposeHeaders), httpserver.HeaderSessionID)
	})
}

func TestSessions(t *testing.T) {
	t.Run("should keep sessions when the ttl is disabled", func(t *testing.T) {
		var built int
		sessions := httpserver.NewSessions(func(ctx context.Context, id string) *app.Session {
			built++
			return &app.Session{ID: id}
		}, -1)

		first := sessions.Get(context.Background(), "a")
		again := sessions.Get(context.Background(), "a")
		sessions.Get(context.Background(), "b")

		assert.Same(t, first, again)
		assert.Equal(t, 2, built)
		assert.Equal(t, 2, sessions.Len())
	})

	t.Run("should rebuild a session after the ttl", func(t *testing.T) {
		var built int
		sessions := httpserver.NewSessions(func(ctx context.Context, id string) *app.Session {
			built++
			return &app.Session{ID: id}
		}, time.Nanosecond)

		sessions.Get(context.Background(), "a")
		time.Sleep(time.Millisecond)
		sessions.Get(context.Background(), "b")

		assert.Equal(t, 1, sessions.Len(), "idle session a should be swept")
		sessions.Get(context.Background(), "a")
		assert.Equal(t, 3, built)
	})
}

func TestMiddlewareRecoveryBehavior(t *testing.T) {
	// Arrange
	server := newTestServer(t)
	server.Router.GET("/panic", func(c echo.Context) error {
		panic("test panic")
	})

	// Act
	response := makeRequest(server.Server, http.MethodGet, "/panic", nil)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, response.Code, "Should return 500 on panic")
}

func TestCustomErrorHandler(t *testing.T) {
	tests := []struct {
		name               string
		error              error
		expectedStatusCode int
		expectedCode       string
		expectedMessage    string
	}{
		{
			name:               "invalid error returns 400",
			error:              errs.Errorf(errs.EINVALID, "invalid input"),
			expectedStatusCode: http.StatusBadRequest,
			expectedCode:       "100010",
			expectedMessage:    "invalid input",
		},
		{
			name:               "not found error returns 404",
			error:              errs.Errorf(errs.ENOTFOUND, "resource not found"),
			expectedStatusCode: http.StatusNotFound,
			expectedCode:       "100404",
			expectedMessage:    "resource not found",
		},
		{
			name:               "conflict error returns 409",
			error:              errs.Errorf(errs.ECONFLICT, "favorite update already in progress"),
			expectedStatusCode: http.StatusConflict,
			expectedCode:       "100409",
			expectedMessage:    "favorite update already in progress",
		},
		{
			name:               "unauthorized error returns 401",
			error:              errs.Errorf(errs.EUNAUTHORIZED, "Please log in to manage favorites"),
			expectedStatusCode: http.StatusUnauthorized,
			expectedCode:       "100401",
			expectedMessage:    "Please log in to manage favorites",
		},
		{
			name:               "not implemented error returns 501",
			error:              errs.Errorf(errs.ENOTIMPLEMENTED, "feature not implemented"),
			expectedStatusCode: http.StatusNotImplemented,
			expectedCode:       "100501",
			expectedMessage:    "feature not implemented",
		},
		{
			name:               "transport error returns 502 with its message",
			error:              errs.Errorf(errs.ETRANSPORT, "Network error"),
			expectedStatusCode: http.StatusBadGateway,
			expectedCode:       "100502",
			expectedMessage:    "Network error",
		},
		{
			name:               "protocol error returns 502",
			error:              errs.Errorf(errs.EPROTOCOL, "Invalid response format"),
			expectedStatusCode: http.StatusBadGateway,
			expectedCode:       "100503",
			expectedMessage:    "Invalid response format",
		},
		{
			name:               "internal error returns 500 with generic message",
			error:              errs.Errorf(errs.EINTERNAL, "database connection failed"),
			expectedStatusCode: http.StatusInternalServerError,
			expectedCode:       "100500",
			expectedMessage:    "Internal server error",
		},
		{
			name:               "unknown error returns 500 with generic message",
			error:              errors.New("some random error"),
			expectedStatusCode: http.StatusInternalServerError,
			expectedCode:       "100500",
			expectedMessage:    "Internal server error",
		},
		{
			name:               "context error returns 500",
			error:              context.DeadlineExceeded,
			expectedStatusCode: http.StatusInternalServerError,
			expectedCode:       "100500",
			expectedMessage:    "Internal server error",
		},
		{
			name:               "echo http error preserves status code",
			error:              echo.NewHTTPError(http.StatusForbidden, "forbidden"),
			expectedStatusCode: http.StatusForbidden,
			expectedCode:       "100403",
			expectedMessage:    "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			server := newTestServer(t)
			server.Router.GET("/error", func(c echo.Context) error {
				return tt.error
			})

			// Act
			response := makeRequest(server.Server, http.MethodGet, "/error", nil)

			// Assert
			assert.Equal(t, tt.expectedStatusCode, response.Code)
			resp := decodeAPIResponse(t, response)
			assert.Equal(t, tt.expectedCode, resp.Code)
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}
}

// Helper functions for test setup and assertions

func allocateRandomPort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return port
}

func startServerAsync(server *httpserver.Server) chan error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()
	time.Sleep(100 * time.Millisecond) // Wait for server to start
	return errChan
}

func waitForServerReady(port int) {
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/healthcheck", port))
	if err == nil {
		resp.Body.Close()
	}
}

func assertServerStopsGracefully(t *testing.T, server *httpserver.Server, errChan chan error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := server.Shutdown(ctx)
	assert.NoError(t, err, "Shutdown should complete without error")

	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("Unexpected error during shutdown: %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Server did not stop within timeout")
	}
}

func makeRequest(server *httpserver.Server, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := newRequest(method, path)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	server.Router.ServeHTTP(rec, req)
	return rec
}

func addTestRoute(server *httpserver.Server) {
	server.Router.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "test")
	})
}
