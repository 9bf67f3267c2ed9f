package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	validToken = "good-token"
	ownerID    = "6f1f7c1e-0000-4000-8000-000000000001"
	taskID     = "6f1f7c1e-0000-4000-8000-0000000000aa"
)

var errBoom = errors.New("boom: pq connection refused")

var owner = &models.User{ID: ownerID, Name: "Ann", Email: "ann@example.com", Role: models.RoleUser}

type fakeUsers struct {
	Users
	register  func(services.RegisterInput) (*services.AuthResult, error)
	login     func(services.LoginInput) (*services.AuthResult, error)
	authorize func(string) (*models.User, *auth.Claims, error)
	logout    func(*auth.Claims) error
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	return f.register(in)
}

func (f *fakeUsers) Login(_ context.Context, in services.LoginInput) (*services.AuthResult, error) {
	return f.login(in)
}

func (f *fakeUsers) Authorize(_ context.Context, token string) (*models.User, *auth.Claims, error) {
	if f.authorize != nil {
		return f.authorize(token)
	}
	if token != validToken {
		return nil, nil, common.ErrorUnauthorized
	}
	claims := &auth.Claims{UserID: owner.ID}
	claims.ID = "jti-1"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	return owner, claims, nil
}

func (f *fakeUsers) Logout(_ context.Context, c *auth.Claims) error {
	return f.logout(c)
}

type fakeTasks struct {
	Tasks
	create    func(userID string, in services.TaskInput) (*models.Task, error)
	list      func(userID string) ([]*models.Task, error)
	get       func(userID, taskID string) (*models.Task, error)
	update    func(userID, taskID string, in services.TaskInput) (*models.Task, error)
	remove    func(userID, taskID string) error
	completed func() ([]*models.CompletedCount, error)
}

func (f *fakeTasks) Create(_ context.Context, userID string, in services.TaskInput) (*models.Task, error) {
	return f.create(userID, in)
}

func (f *fakeTasks) List(_ context.Context, userID string) ([]*models.Task, error) {
	return f.list(userID)
}

// Get answers with an owned task when no get func is set.
func (f *fakeTasks) Get(_ context.Context, userID, taskID string) (*models.Task, error) {
	if f.get == nil {
		return &models.Task{ID: taskID, UserID: userID}, nil
	}
	return f.get(userID, taskID)
}

func (f *fakeTasks) Update(_ context.Context, userID, taskID string, in services.TaskInput) (*models.Task, error) {
	return f.update(userID, taskID, in)
}

func (f *fakeTasks) Delete(_ context.Context, userID, taskID string) error {
	return f.remove(userID, taskID)
}

func (f *fakeTasks) CompletedCount(context.Context) ([]*models.CompletedCount, error) {
	return f.completed()
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{EndpointAddrHTTP: "127.0.0.1:0", MaxUploadBytes: 1 << 20}
}

func newTestServer(t *testing.T, cfg *config.Config, us *fakeUsers, ts *fakeTasks) *Server {
	t.Helper()
	if us == nil {
		us = &fakeUsers{}
	}
	if ts == nil {
		ts = &fakeTasks{}
	}
	s, err := NewServer(cfg, logging.NewDiscardLogger(), us, ts, fakePinger{})
	require.NoError(t, err)
	return s
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func authed(extra map[string]string) map[string]string {
	h := map[string]string{common.AuthorizationHeaderName: "Bearer " + validToken}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}
