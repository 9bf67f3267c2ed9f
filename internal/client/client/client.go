package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

// Credentials supplies the bearer token for a call and is told when the
// server no longer accepts it.
type Credentials interface {
	Token() string
	Invalidate(ctx context.Context) error
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Client is the taskkeeper API as seen by the CLI.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, creds Credentials) error
	ListTasks(ctx context.Context, creds Credentials) ([]*models.Task, error)
	GetTask(ctx context.Context, creds Credentials, id string) (*models.Task, error)
	CreateTask(ctx context.Context, creds Credentials, draft models.TaskDraft) (*models.Task, error)
	UpdateTask(ctx context.Context, creds Credentials, id string, draft models.TaskDraft) (*models.Task, error)
	DeleteTask(ctx context.Context, creds Credentials, id string) error
	CompletedCount(ctx context.Context, creds Credentials) ([]*models.CompletedCount, error)
}
