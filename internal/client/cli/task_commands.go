package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
)

var getMultiline = GetMultiline

// timeLayout is the format the CLI shows and suggests for due dates. The
// server also accepts RFC 3339.
const timeLayout = "2006-01-02 15:04"

func (a *App) List(ctx context.Context) error {
	tasks, err := a.taskService.List(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks yet. Use 'add' to create one.")
		return nil
	}
	fmt.Fprint(a.out, formatTaskList(tasks, time.Now()))
	return nil
}

func (a *App) askID(id string) (string, error) {
	if !a.isLoggedIn() {
		return "", services.ErrNotLoggedIn
	}
	if id != "" {
		return id, nil
	}
	return getSimpleText(a.reader, "Task ID", a.out)
}

func (a *App) Show(ctx context.Context, id string) error {
	id, err := a.askID(id)
	if err != nil {
		return err
	}
	t, err := a.taskService.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, formatTask(t))
	return nil
}

func (a *App) loadFile(path string) (*models.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return &models.File{Name: filepath.Base(path), Content: data}, nil
}

func (a *App) Add(ctx context.Context) error {
	if !a.isLoggedIn() {
		return services.ErrNotLoggedIn
	}

	var d models.TaskDraft
	var err error

	if d.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if d.Description, err = getMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	if d.Time, err = getSimpleText(a.reader, "Due, UTC ("+timeLayout+")", a.out); err != nil {
		return err
	}
	if d.Status, err = GetTextWithDefault(a.reader, statusPrompt(), models.StatusPending, a.out); err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Attachment path (optional)", a.out)
	if err != nil {
		return err
	}
	if d.File, err = a.loadFile(path); err != nil {
		return err
	}

	t, err := a.taskService.Create(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Task created: %s\n", t.ID)
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	id, err := a.askID(id)
	if err != nil {
		return err
	}
	cur, err := a.taskService.Get(ctx, id)
	if err != nil {
		return err
	}

	d := models.TaskDraft{Time: cur.Time.Format(time.RFC3339)}
	if d.Title, err = GetTextWithDefault(a.reader, "Title", cur.Title, a.out); err != nil {
		return err
	}
	desc, err := getMultiline(a.reader, "Description (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	d.Description = cur.Description
	if desc != "" {
		d.Description = desc
	}
	due, err := GetTextWithDefault(a.reader, "Due, UTC", cur.Time.UTC().Format(timeLayout), a.out)
	if err != nil {
		return err
	}
	if due != cur.Time.UTC().Format(timeLayout) {
		d.Time = due
	}
	if d.Status, err = GetTextWithDefault(a.reader, statusPrompt(), cur.Status, a.out); err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "New attachment path (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	if d.File, err = a.loadFile(path); err != nil {
		return err
	}

	t, err := a.taskService.Update(ctx, cur.ID, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Task updated: %s\n", t.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	id, err := a.askID(id)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, "Are you sure you want to delete this task?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.taskService.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Task deleted.")
	return nil
}

func (a *App) Report(ctx context.Context) error {
	rows, err := a.taskService.CompletedCount(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No completed tasks yet.")
		return nil
	}
	fmt.Fprint(a.out, formatReport(rows))
	return nil
}

func statusPrompt() string {
	return "Status (" + strings.Join(models.Statuses, ", ") + ")"
}
