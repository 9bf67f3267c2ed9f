package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/blob"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// AttachmentNamespace is the blob namespace holding task attachments.
const AttachmentNamespace = "attachments"

var (
	// ErrNoData is returned by CompletedCount when no task is completed.
	ErrNoData = errors.New("no data")
	// ErrAttachmentOrphaned marks failures that happened after the previous
	// attachment had already been removed.
	ErrAttachmentOrphaned = errors.New("attachment orphaned")
)

// AttachmentOrphanedError reports that a task update deleted the old blob
// but could not finish attaching the new one. Path is the deleted blob that
// the task row may still reference.
type AttachmentOrphanedError struct {
	TaskID string
	Path   string
	Err    error
}

func (e *AttachmentOrphanedError) Error() string {
	return fmt.Sprintf("task %s: attachment %s orphaned: %v", e.TaskID, e.Path, e.Err)
}

func (e *AttachmentOrphanedError) Unwrap() error { return e.Err }

func (e *AttachmentOrphanedError) Is(target error) bool { return target == ErrAttachmentOrphaned }

// TaskInput is the create/update form. Time is parsed server-side; an empty
// Status means "default" on create and "unchanged" on update.
type TaskInput struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Time        string      `json:"time" validate:"required"`
	Status      string      `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Attachment  *Attachment `json:"-" validate:"-"`
}

// TaskService implements owner-scoped task CRUD and the completed-count report.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	createRule  AttachmentRule
	updateRule  AttachmentRule
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, cfg *config.Config) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		createRule:  AttachmentRule(cfg.CreateAttachment),
		updateRule:  AttachmentRule(cfg.UpdateAttachment),
	}
}

// checked is a validated TaskInput.
type checked struct {
	in          TaskInput
	due         time.Time
	contentType string
}

func (s *TaskService) check(in TaskInput, rule AttachmentRule) (*checked, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	ve := validateStruct(in)
	if ve == nil {
		ve = &ValidationError{}
	}

	c := &checked{in: in}
	if in.Time != "" {
		t, ok := parseDueTime(in.Time)
		if !ok {
			ve.add("time", "The time field must be a valid date.")
		}
		c.due = t
	}
	c.contentType = rule.check(in.Attachment, ve)

	if err := ve.orNil(); err != nil {
		return nil, err
	}
	return c, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create validates in, stores its attachment and persists a new task owned by
// userID. If the row cannot be written the fresh blob is removed again.
func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	c, err := s.check(in, s.createRule)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       c.in.Title,
		Description: c.in.Description,
		Time:        c.due,
		Status:      models.TaskStatusPending,
	}
	if c.in.Status != "" {
		task.Status = models.TaskStatus(c.in.Status)
	}

	if a := c.in.Attachment; a != nil && a.Body != nil {
		path, err := s.blobs.Put(ctx, AttachmentNamespace, a.Filename, a.Body, a.Size, c.contentType)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		task.Attachment = &path
	}

	created, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		if task.Attachment != nil {
			if delErr := s.blobs.Delete(ctx, *task.Attachment); delErr != nil {
				err = errors.Join(err, fmt.Errorf("discard attachment: %w", delErr))
			}
		}
		return nil, err
	}
	return created, nil
}

// List returns every task owned by userID. The slice is never nil.
func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).ListByOwner(ctx, userID)
}

// Get returns the task if userID owns it, common.ErrorNotFound otherwise.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Tasks(s.db).GetByIDAndOwner(ctx, taskID, userID)
}

// Update overwrites title, description and time, sets status when supplied,
// and swaps the attachment when a new file is given: the old blob is deleted,
// the new one stored, then the row written. A failure after the old blob is
// gone is returned as *AttachmentOrphanedError.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, in TaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	c, err := s.check(in, s.updateRule)
	if err != nil {
		return nil, err
	}

	task.Title = c.in.Title
	task.Description = c.in.Description
	task.Time = c.due
	if c.in.Status != "" {
		task.Status = models.TaskStatus(c.in.Status)
	}

	repo := s.repomanager.Tasks(s.db)

	a := c.in.Attachment
	if a == nil || a.Body == nil {
		return repo.Update(ctx, task)
	}

	old := task.Attachment
	if old != nil {
		if err := s.blobs.Delete(ctx, *old); err != nil {
			return nil, fmt.Errorf("delete attachment: %w", err)
		}
	}

	orphaned := func(err error) error {
		if old == nil {
			return err
		}
		return &AttachmentOrphanedError{TaskID: task.ID, Path: *old, Err: err}
	}

	path, err := s.blobs.Put(ctx, AttachmentNamespace, a.Filename, a.Body, a.Size, c.contentType)
	if err != nil {
		return nil, orphaned(fmt.Errorf("store attachment: %w", err))
	}
	task.Attachment = &path

	updated, err := repo.Update(ctx, task)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, path); delErr != nil {
			err = errors.Join(err, fmt.Errorf("discard attachment: %w", delErr))
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, orphaned(err)
	}
	return updated, nil
}

// Delete removes the task's blob, if any, and then the task. A blob failure
// leaves the task in place.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if task.Attachment != nil {
		if err := s.blobs.Delete(ctx, *task.Attachment); err != nil {
			return fmt.Errorf("delete attachment: %w", err)
		}
	}

	return s.repomanager.Tasks(s.db).Delete(ctx, task.ID, userID)
}

// CompletedCount aggregates completed tasks per owner across all users.
// It returns ErrNoData when nobody has completed anything.
func (s *TaskService) CompletedCount(ctx context.Context) ([]*models.CompletedCount, error) {
	rows, err := s.repomanager.Tasks(s.db).CompletedCountByOwner(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}
