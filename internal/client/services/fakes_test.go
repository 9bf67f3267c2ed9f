package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

var errBoom = errors.New("boom")

type memSession struct {
	token    string
	user     *models.User
	startErr error
}

func (s *memSession) Token() string { return s.token }
func (s *memSession) Invalidate(context.Context) error {
	s.token, s.user = "", nil
	return nil
}
func (s *memSession) Start(_ context.Context, token string, u *models.User) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.token, s.user = token, u
	return nil
}
func (s *memSession) User() *models.User { return s.user }
func (s *memSession) Active() bool       { return s.token != "" }

type fakeClient struct {
	client.Client

	calls []string

	authRes *client.AuthResponse
	authErr error

	lastRegister client.RegisterRequest
	lastLogin    client.LoginRequest
	logoutErr    error

	tasks     []*models.Task
	task      *models.Task
	taskErr   error
	lastDraft models.TaskDraft
	lastID    string
	counts    []*models.CompletedCount
	countErr  error
}

func (f *fakeClient) Register(_ context.Context, req client.RegisterRequest) (*client.AuthResponse, error) {
	f.calls = append(f.calls, "register")
	f.lastRegister = req
	return f.authRes, f.authErr
}

func (f *fakeClient) Login(_ context.Context, req client.LoginRequest) (*client.AuthResponse, error) {
	f.calls = append(f.calls, "login")
	f.lastLogin = req
	return f.authRes, f.authErr
}

func (f *fakeClient) Logout(context.Context, client.Credentials) error {
	f.calls = append(f.calls, "logout")
	return f.logoutErr
}

func (f *fakeClient) ListTasks(context.Context, client.Credentials) ([]*models.Task, error) {
	f.calls = append(f.calls, "list")
	return f.tasks, f.taskErr
}

func (f *fakeClient) GetTask(_ context.Context, _ client.Credentials, id string) (*models.Task, error) {
	f.calls = append(f.calls, "get")
	f.lastID = id
	return f.task, f.taskErr
}

func (f *fakeClient) CreateTask(_ context.Context, _ client.Credentials, d models.TaskDraft) (*models.Task, error) {
	f.calls = append(f.calls, "create")
	f.lastDraft = d
	return f.task, f.taskErr
}

func (f *fakeClient) UpdateTask(_ context.Context, _ client.Credentials, id string, d models.TaskDraft) (*models.Task, error) {
	f.calls = append(f.calls, "update")
	f.lastID, f.lastDraft = id, d
	return f.task, f.taskErr
}

func (f *fakeClient) DeleteTask(_ context.Context, _ client.Credentials, id string) error {
	f.calls = append(f.calls, "delete")
	f.lastID = id
	return f.taskErr
}

func (f *fakeClient) CompletedCount(context.Context, client.Credentials) ([]*models.CompletedCount, error) {
	f.calls = append(f.calls, "completed")
	return f.counts, f.countErr
}
