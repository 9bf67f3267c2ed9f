// Package models defines the client-side views of API resources.
package models

import "time"

// TaskStatus values accepted by the API.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Statuses lists task statuses in workflow order.
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Attachment  *string   `json:"attachment"`
	Time        time.Time `json:"time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CompletedCount struct {
	OwnerID             string `json:"owner_id"`
	OwnerName           string `json:"owner_name"`
	CompletedTasksCount int64  `json:"completed_tasks_count"`
}

// File is a local file chosen for upload.
type File struct {
	Name    string
	Content []byte
}

// TaskDraft is what the user typed for a new or edited task. Time is sent
// as entered; the server parses it.
type TaskDraft struct {
	Title       string
	Description string
	Time        string
	Status      string
	File        *File
}
