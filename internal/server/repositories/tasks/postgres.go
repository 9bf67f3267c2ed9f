package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, user_id, title, description, attachment, due_time, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	var (
		attachment sql.NullString
		status     string
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &attachment,
		&t.Time, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if attachment.Valid {
		v := attachment.String
		t.Attachment = &v
	}
	t.Status = models.TaskStatus(status)
	return t, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapLookupErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

// Create inserts task and fills in the server-side timestamps.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (id, user_id, title, description, attachment, due_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, nullable(task.Attachment),
		task.Time, string(task.Status)).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// ListByOwner returns the caller's tasks, oldest first. The result is never nil.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, userID string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE id = $1 AND user_id = $2`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return t, nil
}

// Update writes every mutable column of task, scoped to its owner.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_time = $3, status = $4, attachment = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Time, string(task.Status), nullable(task.Attachment),
		task.ID, task.UserID).Scan(&task.UpdatedAt)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return task, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return mapLookupErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// CompletedCountByOwner aggregates completed tasks per owner across all users.
// Owners without completed tasks are not listed.
func (r *PostgresRepository) CompletedCountByOwner(ctx context.Context) ([]*models.CompletedCount, error) {
	query := `
		SELECT u.id, u.name, COUNT(t.id)
		FROM tasks t
		JOIN users u ON u.id = t.user_id
		WHERE t.status = 'completed'
		GROUP BY u.id, u.name
		ORDER BY u.name, u.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.CompletedCount, 0)
	for rows.Next() {
		var c models.CompletedCount
		if err := rows.Scan(&c.OwnerID, &c.OwnerName, &c.CompletedTasksCount); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
