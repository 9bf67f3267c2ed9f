package services

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

// ErrNotLoggedIn is returned by task operations without an active session.
var ErrNotLoggedIn = errors.New("not logged in")

// TaskService defines task operations for the CLI. Every call requires an
// active session.
type TaskService interface {
	List(ctx context.Context) ([]*models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, draft models.TaskDraft) (*models.Task, error)
	Update(ctx context.Context, id string, draft models.TaskDraft) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	CompletedCount(ctx context.Context) ([]*models.CompletedCount, error)
}

type taskService struct {
	client  client.Client
	session Session
}

func NewTaskService(c client.Client, s Session) TaskService {
	return &taskService{client: c, session: s}
}

func (t *taskService) requireSession() error {
	if !t.session.Active() {
		return ErrNotLoggedIn
	}
	return nil
}

func validateDraft(d *models.TaskDraft) error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Time = strings.TrimSpace(d.Time)
	d.Status = strings.TrimSpace(d.Status)

	ve := &client.ValidationError{}
	if d.Title == "" {
		ve.Add("title", "Title is required")
	}
	if d.Description == "" {
		ve.Add("description", "Description is required")
	}
	if d.Time == "" {
		ve.Add("time", "Date is required")
	}
	if d.Status != "" && !slices.Contains(models.Statuses, d.Status) {
		ve.Add("status", "Status must be one of: "+strings.Join(models.Statuses, ", "))
	}
	return ve.OrNil()
}

func (t *taskService) List(ctx context.Context) ([]*models.Task, error) {
	if err := t.requireSession(); err != nil {
		return nil, err
	}
	return t.client.ListTasks(ctx, t.session)
}

func (t *taskService) Get(ctx context.Context, id string) (*models.Task, error) {
	if err := t.requireSession(); err != nil {
		return nil, err
	}
	return t.client.GetTask(ctx, t.session, strings.TrimSpace(id))
}

func (t *taskService) Create(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	if err := t.requireSession(); err != nil {
		return nil, err
	}
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}
	return t.client.CreateTask(ctx, t.session, draft)
}

func (t *taskService) Update(ctx context.Context, id string, draft models.TaskDraft) (*models.Task, error) {
	if err := t.requireSession(); err != nil {
		return nil, err
	}
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}
	return t.client.UpdateTask(ctx, t.session, strings.TrimSpace(id), draft)
}

func (t *taskService) Delete(ctx context.Context, id string) error {
	if err := t.requireSession(); err != nil {
		return err
	}
	return t.client.DeleteTask(ctx, t.session, strings.TrimSpace(id))
}

// CompletedCount returns an empty report when nobody has completed a task.
func (t *taskService) CompletedCount(ctx context.Context) ([]*models.CompletedCount, error) {
	if err := t.requireSession(); err != nil {
		return nil, err
	}
	rows, err := t.client.CompletedCount(ctx, t.session)
	if errors.Is(err, client.ErrNotFound) {
		return []*models.CompletedCount{}, nil
	}
	return rows, err
}
