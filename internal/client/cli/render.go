package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

const maxColWidth = 50

func newTable() *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.Wrap = true
	return table
}

func attachmentLabel(t *models.Task) string {
	if t.Attachment == nil || *t.Attachment == "" {
		return "-"
	}
	return *t.Attachment
}

// dueLabel renders the due time relative to now, e.g. "3 days from now".
func dueLabel(due, now time.Time) string {
	if due.IsZero() {
		return "-"
	}
	return humanize.RelTime(due, now, "ago", "from now")
}

func formatTaskList(tasks []*models.Task, now time.Time) string {
	table := newTable()
	table.AddRow("ID", "TITLE", "STATUS", "DUE", "ATTACHMENT")
	for _, t := range tasks {
		table.AddRow(t.ID, t.Title, t.Status, dueLabel(t.Time, now), attachmentLabel(t))
	}
	return fmt.Sprintln(table)
}

func formatTask(t *models.Task) string {
	table := newTable()
	table.AddRow("ID:", t.ID)
	table.AddRow("Title:", t.Title)
	table.AddRow("Description:", t.Description)
	table.AddRow("Status:", t.Status)
	table.AddRow("Due:", t.Time.UTC().Format(timeLayout)+" UTC")
	table.AddRow("Attachment:", attachmentLabel(t))
	table.AddRow("Created:", t.CreatedAt.UTC().Format(time.RFC3339))
	table.AddRow("Updated:", t.UpdatedAt.UTC().Format(time.RFC3339))
	return fmt.Sprintln(table)
}

func formatReport(rows []*models.CompletedCount) string {
	table := newTable()
	table.AddRow("OWNER", "COMPLETED")
	table.RightAlign(1)
	for _, r := range rows {
		table.AddRow(r.OwnerName, strconv.FormatInt(r.CompletedTasksCount, 10))
	}
	return fmt.Sprintln(table)
}
