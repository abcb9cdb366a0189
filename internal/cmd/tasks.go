package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/tui"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

const (
	dashboardRoute  = "/"
	newTaskRoute    = "/tasks/new"
	taskDetailRoute = "/tasks/:id"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task"},
	Short:   "List and manage tasks",
	Long: `List, create and manage tasks.

Examples:
  taskboard tasks list --status in_progress
  taskboard tasks get 7
  taskboard tasks create --title "Write report" --priority high --worker 3 --worker 4
  taskboard tasks update 7 --status in_progress
  taskboard tasks assign 7 5
  taskboard tasks complete 7
  taskboard tasks approve 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var tasksListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List tasks (the dashboard)",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: dashboardRoute},
	RunE:        runTasksList,
}

var tasksGetCmd = &cobra.Command{
	Use:         "get <task-id>",
	Short:       "Show one task",
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksGet,
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	Long: `Create a task. The title is prompted for when omitted in a terminal.

Priorities: low, medium, high, critical.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: newTaskRoute},
	RunE:        runTasksCreate,
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task",
	Long: `Update a task. Only the flags given are changed.

Statuses: new, in_progress, completed, rework.`,
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksUpdate,
}

var tasksDeleteCmd = &cobra.Command{
	Use:         "delete <task-id>",
	Short:       "Delete a task",
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksDelete,
}

var tasksWorkersCmd = &cobra.Command{
	Use:         "workers <task-id>",
	Short:       "List the workers assigned to a task",
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksWorkers,
}

var tasksAssignCmd = &cobra.Command{
	Use:         "assign <task-id> <worker-id>",
	Short:       "Assign a worker to a task",
	Args:        idArgs("task id", "worker id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksAssign,
}

var tasksUnassignCmd = &cobra.Command{
	Use:         "unassign <task-id> <worker-id>",
	Short:       "Remove a worker from a task",
	Args:        idArgs("task id", "worker id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksUnassign,
}

var tasksCompleteCmd = &cobra.Command{
	Use:         "complete <task-id>",
	Short:       "Mark your part of a task as done",
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksComplete,
}

var tasksApproveCmd = &cobra.Command{
	Use:         "approve <task-id>",
	Short:       "Approve a completed task",
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksReview,
}

var tasksReworkCmd = &cobra.Command{
	Use:         "rework <task-id>",
	Short:       "Send a task back for rework",
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runTasksReview,
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksGetCmd)
	tasksCmd.AddCommand(tasksCreateCmd)
	tasksCmd.AddCommand(tasksUpdateCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	tasksCmd.AddCommand(tasksWorkersCmd)
	tasksCmd.AddCommand(tasksAssignCmd)
	tasksCmd.AddCommand(tasksUnassignCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)
	tasksCmd.AddCommand(tasksApproveCmd)
	tasksCmd.AddCommand(tasksReworkCmd)

	tasksListCmd.Flags().Int("skip", 0, "number of tasks to skip")
	tasksListCmd.Flags().Int("limit", 0, "maximum number of tasks (default defaults.page_size)")
	tasksListCmd.Flags().String("status", "", "only show tasks with this status")

	tasksCreateCmd.Flags().String("title", "", "task title")
	tasksCreateCmd.Flags().String("description", "", "task description")
	tasksCreateCmd.Flags().String("priority", "", "task priority")
	tasksCreateCmd.Flags().Int64Slice("worker", nil, "worker id to assign (repeatable)")

	tasksUpdateCmd.Flags().String("title", "", "new title")
	tasksUpdateCmd.Flags().String("description", "", "new description")
	tasksUpdateCmd.Flags().String("status", "", "new status")
	tasksUpdateCmd.Flags().String("priority", "", "new priority")
	tasksUpdateCmd.Flags().Int64Slice("worker", nil, "replace the assigned workers (repeatable)")

	tasksDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(tasksCmd)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	skip, _ := cmd.Flags().GetInt("skip")
	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	if limit <= 0 {
		limit = app.Config.Defaults.PageSize
	}
	if status != "" && !types.TaskStatus(status).IsValid() {
		return usageError("invalid status %q (supported: new, in_progress, completed, rework)", status)
	}

	tasks, err := app.Tasks.Fetch(cmd.Context(), skip, limit)
	if err != nil {
		return err
	}

	if status != "" {
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.Status == types.TaskStatus(status) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	return app.Render(taskListView{Tasks: tasks})
}

func runTasksGet(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	task, err := app.Tasks.Get(cmd.Context(), mustID(args[0]))
	if err != nil {
		return err
	}
	return app.Render(taskView{Task: task})
}

func runTasksCreate(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	priority, _ := cmd.Flags().GetString("priority")
	workers, _ := cmd.Flags().GetInt64Slice("worker")

	if strings.TrimSpace(title) == "" && tui.ShouldPrompt() {
		title, err = tui.PromptForString(tui.Prompt{
			Message:     "Title",
			Placeholder: "What needs doing?",
			Required:    true,
		})
		if err != nil {
			return err
		}
	}

	task, err := app.Tasks.Create(cmd.Context(), types.TaskCreate{
		Title:       strings.TrimSpace(title),
		Description: description,
		Priority:    types.TaskPriority(priority),
		WorkerIDs:   workers,
	})
	if err != nil {
		return err
	}
	return app.Render(taskView{Task: task})
}

func runTasksUpdate(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var update types.TaskUpdate
	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		update.Title = &title
	}
	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		update.Description = &description
	}
	if flags.Changed("status") {
		s, _ := flags.GetString("status")
		status := types.TaskStatus(s)
		update.Status = &status
	}
	if flags.Changed("priority") {
		p, _ := flags.GetString("priority")
		priority := types.TaskPriority(p)
		update.Priority = &priority
	}
	if flags.Changed("worker") {
		workers, _ := flags.GetInt64Slice("worker")
		update.WorkerIDs = workers
	}

	task, err := app.Tasks.Update(cmd.Context(), mustID(args[0]), update)
	if err != nil {
		return err
	}
	return app.Render(taskView{Task: task})
}

func runTasksDelete(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	id := mustID(args[0])
	ok, err := confirm(cmd, fmt.Sprintf("Delete task #%d?", id))
	if err != nil || !ok {
		return err
	}

	if err := app.Tasks.Delete(cmd.Context(), id); err != nil {
		return err
	}
	return app.Render(message{Message: fmt.Sprintf("Deleted task #%d.", id)})
}

func runTasksWorkers(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	id := mustID(args[0])
	workers, err := app.Tasks.Workers(cmd.Context(), id)
	if err != nil {
		return err
	}
	return app.Render(workersView{TaskID: id, WorkerIDs: workers})
}

func runTasksAssign(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	task, err := app.Tasks.AddWorker(cmd.Context(), mustID(args[0]), mustID(args[1]))
	if err != nil {
		return err
	}
	return app.Render(taskView{Task: task})
}

func runTasksUnassign(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	task, err := app.Tasks.RemoveWorker(cmd.Context(), mustID(args[0]), mustID(args[1]))
	if err != nil {
		return err
	}
	return app.Render(taskView{Task: task})
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	completion, err := app.Tasks.Complete(cmd.Context(), mustID(args[0]))
	if err != nil {
		return err
	}
	if completion.TaskID == 0 {
		completion.TaskID = mustID(args[0])
	}
	return app.Render(completionView{Completion: completion})
}

// runTasksReview serves both approve and rework
func runTasksReview(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	id := mustID(args[0])
	review := app.Tasks.Approve
	if cmd.Name() == "rework" {
		review = app.Tasks.Rework
	}

	task, err := review(cmd.Context(), id)
	if err != nil {
		return err
	}
	return app.Render(taskView{Task: task})
}
