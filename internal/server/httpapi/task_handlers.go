package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gorilla/mux"
)

// Task event outcomes reported to metrics.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeFailed   = "failed"
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)
	a, _ := authFrom(ctx)

	tasks, err := s.tasks.List(ctx, a.User.ID)
	if err != nil {
		log.Error(ctx, msgTasksListFailed, "error", err)
		writeError(w, msgTasksListFailed)
		return
	}

	log.Info(ctx, "Tasks retrieved", "count", len(tasks))
	writeSuccess(w, http.StatusOK, msgTasksListed, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)
	a, _ := authFrom(ctx)

	up, err := s.bindTask(w, r)
	if err != nil {
		s.metrics.recordTaskEvent("create", outcomeInvalid)
		writeValidation(w, err)
		return
	}
	defer up.release()

	task, err := s.tasks.Create(ctx, a.User.ID, up.input)
	if err != nil {
		s.taskFailure(w, r, log, "create", "", msgTaskCreateFailed, err)
		return
	}

	s.metrics.recordTaskEvent("create", outcomeOK)
	log.Info(ctx, "Task created", "task_id", task.ID)
	writeSuccess(w, http.StatusCreated, msgTaskCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)
	a, _ := authFrom(ctx)
	id := mux.Vars(r)["id"]

	task, err := s.tasks.Get(ctx, a.User.ID, id)
	if err != nil {
		s.taskFailure(w, r, log, "get", id, msgTaskGetFailed, err)
		return
	}

	log.Info(ctx, "Task retrieved", "task_id", task.ID)
	writeSuccess(w, http.StatusOK, msgTaskFound, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)
	a, _ := authFrom(ctx)
	id := mux.Vars(r)["id"]

	// ownership is settled before the body is read, so a foreign or missing
	// task answers 404 whatever was uploaded
	if _, err := s.tasks.Get(ctx, a.User.ID, id); err != nil {
		s.taskFailure(w, r, log, "update", id, msgTaskUpdateFailed, err)
		return
	}

	up, err := s.bindTask(w, r)
	if err != nil {
		s.metrics.recordTaskEvent("update", outcomeInvalid)
		writeValidation(w, err)
		return
	}
	defer up.release()

	task, err := s.tasks.Update(ctx, a.User.ID, id, up.input)
	if err != nil {
		s.taskFailure(w, r, log, "update", id, msgTaskUpdateFailed, err)
		return
	}

	s.metrics.recordTaskEvent("update", outcomeOK)
	log.Info(ctx, "Task updated", "task_id", task.ID)
	writeSuccess(w, http.StatusOK, msgTaskUpdated, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)
	a, _ := authFrom(ctx)
	id := mux.Vars(r)["id"]

	if err := s.tasks.Delete(ctx, a.User.ID, id); err != nil {
		s.taskFailure(w, r, log, "delete", id, msgTaskDeleteFailed, err)
		return
	}

	s.metrics.recordTaskEvent("delete", outcomeOK)
	log.Info(ctx, "Task deleted", "task_id", id)
	writeSuccess(w, http.StatusOK, msgTaskDeleted, nil)
}

func (s *Server) completedCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)

	rows, err := s.tasks.CompletedCount(ctx)
	switch {
	case errors.Is(err, services.ErrNoData):
		log.Info(ctx, "No completed tasks found")
		writeFail(w, http.StatusNotFound, msgCompletedNone, msgCompletedNoneErr)
		return
	case err != nil:
		log.Error(ctx, msgCompletedFailed, "error", err)
		writeError(w, msgCompletedFailed)
		return
	}

	log.Info(ctx, "Fetched completed task counts by user.", "owners", len(rows))
	writeSuccess(w, http.StatusOK, msgCompletedCount, rows)
}

// taskFailure maps a task service error to its envelope. Internal error text
// only reaches the log.
func (s *Server) taskFailure(w http.ResponseWriter, r *http.Request, log logging.Logger, event, taskID, failMsg string, err error) {
	ctx := r.Context()
	if taskID != "" {
		log = log.With("task_id", taskID)
	}

	switch {
	case services.IsValidation(err):
		s.metrics.recordTaskEvent(event, outcomeInvalid)
		log.Info(ctx, fmt.Sprintf("Validation failed on task %s", event), "error", err.Error())
		writeValidation(w, err)
	case errors.Is(err, common.ErrorNotFound):
		s.metrics.recordTaskEvent(event, outcomeNotFound)
		log.Warn(ctx, "Task not found")
		writeFail(w, http.StatusNotFound, msgTaskNotFound, fmt.Sprintf("No task found with ID %s", taskID))
	case errors.Is(err, services.ErrAttachmentOrphaned):
		s.metrics.recordTaskEvent(event, outcomeFailed)
		log.Error(ctx, failMsg, "error", err)
		writeJSON(w, http.StatusInternalServerError, Envelope{Status: statusError, Message: failMsg, Error: msgAttachmentOrphan})
	default:
		s.metrics.recordTaskEvent(event, outcomeFailed)
		log.Error(ctx, failMsg, "error", err)
		writeError(w, failMsg)
	}
}
