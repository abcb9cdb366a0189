package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskboard/internal/router"
	"github.com/felixgeelhaar/taskboard/internal/ux"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

// Views are what commands hand to App.Render. The structured formats
// (json, yaml) encode the exported fields; text goes through RenderText.

const timeLayout = "2006-01-02 15:04"

type taskListView struct {
	Tasks []types.Task `json:"tasks" yaml:"tasks"`
}

func (v taskListView) RenderText(w io.Writer, s ux.Styles) error {
	if len(v.Tasks) == 0 {
		return ux.RenderEmpty(w, s, "tasks")
	}
	rows := make([][]string, 0, len(v.Tasks))
	for _, t := range v.Tasks {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			string(t.Status),
			string(t.Priority),
			joinIDs(t.WorkerIDs),
			formatTime(t.UpdatedAt),
		})
	}
	return ux.RenderTable(w, s, []string{"ID", "TITLE", "STATUS", "PRIORITY", "WORKERS", "UPDATED"}, rows)
}

type taskView struct {
	Task *types.Task `json:"task" yaml:"task"`
}

func (v taskView) RenderText(w io.Writer, s ux.Styles) error {
	t := v.Task
	fields := []ux.Field{
		{Label: "Status", Value: string(t.Status)},
		{Label: "Priority", Value: string(t.Priority)},
		{Label: "Workers", Value: joinIDs(t.WorkerIDs)},
		{Label: "Created", Value: formatTime(t.CreatedAt)},
		{Label: "Updated", Value: formatTime(t.UpdatedAt)},
	}
	if t.Description != "" {
		fields = append(fields, ux.Field{Label: "Description", Value: t.Description})
	}
	if len(t.WorkerCompletions) > 0 {
		done := make([]int64, 0, len(t.WorkerCompletions))
		for _, c := range t.WorkerCompletions {
			done = append(done, c.WorkerID)
		}
		fields = append(fields, ux.Field{Label: "Completed by", Value: joinIDs(done)})
	}
	return ux.RenderFields(w, s, fmt.Sprintf("#%d %s", t.ID, t.Title), fields)
}

type workersView struct {
	TaskID    int64   `json:"task_id" yaml:"task_id"`
	WorkerIDs []int64 `json:"worker_ids" yaml:"worker_ids"`
}

func (v workersView) RenderText(w io.Writer, s ux.Styles) error {
	if len(v.WorkerIDs) == 0 {
		return ux.RenderEmpty(w, s, "workers")
	}
	return ux.RenderFields(w, s, "", []ux.Field{
		{Label: fmt.Sprintf("Task #%d workers", v.TaskID), Value: joinIDs(v.WorkerIDs)},
	})
}

type completionView struct {
	Completion *types.WorkerCompletion `json:"completion" yaml:"completion"`
}

func (v completionView) RenderText(w io.Writer, s ux.Styles) error {
	msg := fmt.Sprintf("Worker %d completed task #%d", v.Completion.WorkerID, v.Completion.TaskID)
	if !v.Completion.CompletedAt.IsZero() {
		msg += " at " + formatTime(v.Completion.CompletedAt)
	}
	_, err := fmt.Fprintln(w, s.Success.Render(msg))
	return err
}

type userListView struct {
	Users []types.User `json:"users" yaml:"users"`
}

func (v userListView) RenderText(w io.Writer, s ux.Styles) error {
	if len(v.Users) == 0 {
		return ux.RenderEmpty(w, s, "users")
	}
	rows := make([][]string, 0, len(v.Users))
	for _, u := range v.Users {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Email,
			u.FullName,
			string(u.Role),
			activeLabel(u.IsActive),
		})
	}
	return ux.RenderTable(w, s, []string{"ID", "EMAIL", "NAME", "ROLE", "STATUS"}, rows)
}

type userView struct {
	User *types.User `json:"user" yaml:"user"`
}

func (v userView) RenderText(w io.Writer, s ux.Styles) error {
	u := v.User
	return ux.RenderFields(w, s, fmt.Sprintf("#%d %s", u.ID, u.DisplayName()), []ux.Field{
		{Label: "Email", Value: u.Email},
		{Label: "Role", Value: string(u.Role)},
		{Label: "Status", Value: activeLabel(u.IsActive)},
		{Label: "Created", Value: formatTime(u.CreatedAt)},
	})
}

type commentListView struct {
	TaskID   int64           `json:"task_id" yaml:"task_id"`
	Comments []types.Comment `json:"comments" yaml:"comments"`
}

func (v commentListView) RenderText(w io.Writer, s ux.Styles) error {
	if len(v.Comments) == 0 {
		return ux.RenderEmpty(w, s, "comments")
	}
	var b strings.Builder
	for _, c := range v.Comments {
		fmt.Fprintf(&b, "%s %s\n  %s\n",
			s.Key.Render(c.FullName),
			s.Muted.Render(formatTime(c.CreatedAt)),
			c.Text)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type historyView struct {
	TaskID  int64                `json:"task_id" yaml:"task_id"`
	History []types.HistoryEntry `json:"history" yaml:"history"`
}

func (v historyView) RenderText(w io.Writer, s ux.Styles) error {
	if len(v.History) == 0 {
		return ux.RenderEmpty(w, s, "history entries")
	}
	rows := make([][]string, 0, len(v.History))
	for _, h := range v.History {
		rows = append(rows, []string{
			formatTime(h.CreatedAt),
			string(h.EventType),
			strconv.FormatInt(h.UserID, 10),
			h.Details,
		})
	}
	return ux.RenderTable(w, s, []string{"WHEN", "EVENT", "USER", "DETAILS"}, rows)
}

type loginView struct {
	User      types.User `json:"user" yaml:"user"`
	Persisted bool       `json:"persisted" yaml:"persisted"`
}

func (v loginView) RenderText(w io.Writer, s ux.Styles) error {
	msg := fmt.Sprintf("Logged in as %s (%s, %s)", v.User.DisplayName(), v.User.Email, v.User.Role)
	if _, err := fmt.Fprintln(w, s.Success.Render(msg)); err != nil {
		return err
	}
	if !v.Persisted {
		_, err := fmt.Fprintln(w, s.Warning.Render("The session could not be saved and ends with this command."))
		return err
	}
	return nil
}

type statusView struct {
	Authenticated bool        `json:"authenticated" yaml:"authenticated"`
	User          *types.User `json:"user,omitempty" yaml:"user,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Reason        string      `json:"reason,omitempty" yaml:"reason,omitempty"`
	TokenStore    string      `json:"token_store,omitempty" yaml:"token_store,omitempty"`
}

func (v statusView) RenderText(w io.Writer, s ux.Styles) error {
	if !v.Authenticated {
		msg := "Not logged in"
		if v.Reason != "" {
			msg += ": " + v.Reason
		}
		_, err := fmt.Fprintln(w, s.Warning.Render(msg))
		return err
	}

	fields := []ux.Field{
		{Label: "Email", Value: v.User.Email},
		{Label: "Role", Value: string(v.User.Role)},
	}
	if v.ExpiresAt != nil {
		fields = append(fields, ux.Field{Label: "Expires", Value: v.ExpiresAt.Local().Format(timeLayout)})
	}
	if v.TokenStore != "" {
		fields = append(fields, ux.Field{Label: "Token file", Value: v.TokenStore})
	}
	return ux.RenderFields(w, s, "Logged in as "+v.User.DisplayName(), fields)
}

type navigationView struct {
	Decision    router.Decision `json:"decision" yaml:"decision"`
	Destination string          `json:"destination" yaml:"destination"`
	Hops        []string        `json:"hops" yaml:"hops"`
}

func (v navigationView) RenderText(w io.Writer, s ux.Styles) error {
	d := v.Decision
	action := s.Success.Render(string(d.Action))
	if !d.Allowed() {
		action = s.Warning.Render(string(d.Action))
	}
	route := d.RouteName()
	if route == "" {
		route = "(none)"
	}
	fields := []ux.Field{
		{Label: "Path", Value: d.Path},
		{Label: "Route", Value: route},
		{Label: "Decision", Value: action},
		{Label: "Reason", Value: d.Reason},
	}
	if len(v.Hops) > 1 {
		fields = append(fields,
			ux.Field{Label: "Destination", Value: v.Destination},
			ux.Field{Label: "Redirects", Value: strings.Join(v.Hops, " -> ")},
		)
	}
	return ux.RenderFields(w, s, "", fields)
}

// message is a one-line confirmation
type message struct {
	Message string `json:"message" yaml:"message"`
}

func (m message) RenderText(w io.Writer, s ux.Styles) error {
	_, err := fmt.Fprintln(w, s.Success.Render(m.Message))
	return err
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

func formatTime(t types.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func (v routeTableView) RenderText(w io.Writer, s ux.Styles) error {
	rows := make([][]string, 0, len(v.Routes))
	for _, r := range v.Routes {
		access := "public"
		switch {
		case r.RequiresAdmin:
			access = "admin"
		case r.RequiresAuth:
			access = "login"
		}
		rows = append(rows, []string{r.Name, r.Path, access})
	}
	return ux.RenderTable(w, s, []string{"NAME", "PATH", "ACCESS"}, rows)
}
