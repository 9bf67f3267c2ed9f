package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository persists tasks. Every lookup that takes an owner treats a task
// owned by somebody else exactly like a missing one (common.ErrorNotFound).
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Task, error)
	GetByIDAndOwner(ctx context.Context, id, userID string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id, userID string) error
	CompletedCountByOwner(ctx context.Context) ([]*models.CompletedCount, error)
}
