package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		authErr    error
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "rejected token", header: "Bearer nope", authErr: fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired), wantStatus: http.StatusUnauthorized},
		{name: "storage failure", header: "Bearer x", authErr: errBoom, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			us := &fakeUsers{authorize: func(string) (*models.User, *auth.Claims, error) {
				return nil, nil, tt.authErr
			}}
			ts := &fakeTasks{list: func(string) ([]*models.Task, error) {
				t.Fatal("handler must not run")
				return nil, nil
			}}
			s := newTestServer(t, testConfig(), us, ts)

			headers := map[string]string{}
			if tt.header != "" {
				headers[common.AuthorizationHeaderName] = tt.header
			}
			rec, env := do(t, s, http.MethodGet, "/api/tasks", nil, headers)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.NotContains(t, rec.Body.String(), "connection refused")
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "fail", env.Status)
				assert.Equal(t, msgUnauthorized, env.Message)
			}
		})
	}
}

func TestRequestID_EchoedOrGenerated(t *testing.T) {
	s := newTestServer(t, testConfig(), nil, nil)

	rec, _ := do(t, s, http.MethodGet, "/healthz", nil, map[string]string{common.RequestIDHeaderName: "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get(common.RequestIDHeaderName))

	rec, _ = do(t, s, http.MethodGet, "/healthz", nil, nil)
	assert.NotEmpty(t, rec.Header().Get(common.RequestIDHeaderName))
}

func TestRecoverer_PanicBecomesEnvelope(t *testing.T) {
	ts := &fakeTasks{list: func(string) ([]*models.Task, error) { panic("kaboom") }}
	s := newTestServer(t, testConfig(), nil, ts)

	rec, env := do(t, s, http.MethodGet, "/api/tasks", nil, authed(nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", env.Status)
	assert.NotContains(t, rec.Body.String(), "kaboom")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := newTestServer(t, testConfig(), nil, nil)

	rec, env := do(t, s, http.MethodGet, "/api/nothing", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "fail", env.Status)

	rec, env = do(t, s, http.MethodPut, "/api/tasks", nil, authed(nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, msgMethodNotAllowed, env.Message)
}

func TestMethodNotAllowedOnEveryRouteLevel(t *testing.T) {
	s := newTestServer(t, testConfig(), nil, nil)

	tests := []struct {
		method  string
		path    string
		headers map[string]string
	}{
		{http.MethodPost, "/healthz", nil},
		{http.MethodGet, "/api/register", nil},
		{http.MethodPut, "/api/login", nil},
		{http.MethodDelete, "/api/tasks", authed(nil)},
		{http.MethodPut, "/api/tasks/" + taskID, authed(nil)},
		{http.MethodPut, "/api/tasks/" + taskID, nil},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec, env := do(t, s, tt.method, tt.path, nil, tt.headers)
			require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "fail", env.Status)
			assert.Equal(t, msgMethodNotAllowed, env.Message)
		})
	}

	for _, path := range []string{"/nothing", "/api/nothing", "/api/tasks/a/b"} {
		rec, env := do(t, s, http.MethodGet, path, nil, authed(nil))
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, msgRouteNotFound, env.Message, path)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, testConfig(), nil, nil)
	rec, env := do(t, s, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)

	s.health = fakePinger{err: errBoom}
	rec, _ = do(t, s, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestMetrics_CountsRequestsByRouteTemplate(t *testing.T) {
	ts := &fakeTasks{get: func(string, string) (*models.Task, error) {
		return &models.Task{ID: taskID, UserID: ownerID}, nil
	}}
	s := newTestServer(t, testConfig(), nil, ts)

	rec, _ := do(t, s, http.MethodGet, "/api/tasks/"+taskID, nil, authed(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `taskkeeper_api_http_requests_total{method="GET",route="/api/tasks/{id}",status="200"} 1`)
	assert.NotContains(t, body, taskID)
}
