package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/tui"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Read and write task comments",
	Long: `Read and write the comments on a task.

Examples:
  taskboard comments list 7
  taskboard comments add 7 "Draft is on the shared drive"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var commentsListCmd = &cobra.Command{
	Use:         "list <task-id>",
	Short:       "List a task's comments",
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runCommentsList,
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <task-id> [text...]",
	Short: "Comment on a task",
	Long: `Comment on a task as the logged in user. The text is taken from the
remaining arguments, or prompted for in a terminal.`,
	Args:        leadingIDArg("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runCommentsAdd,
}

var historyCmd = &cobra.Command{
	Use:         "history <task-id>",
	Short:       "Show a task's change history",
	Args:        idArgs("task id"),
	Annotations: map[string]string{routeAnnotation: taskDetailRoute},
	RunE:        runHistory,
}

func init() {
	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsAddCmd)

	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(historyCmd)
}

func runCommentsList(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	id := mustID(args[0])
	comments, err := app.Comments.Fetch(cmd.Context(), id)
	if err != nil {
		return err
	}
	return app.Render(commentListView{TaskID: id, Comments: comments})
}

func runCommentsAdd(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	id := mustID(args[0])
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" && tui.ShouldPrompt() {
		text, err = tui.PromptForString(tui.Prompt{Message: "Comment", Required: true})
		if err != nil {
			return err
		}
	}

	comment, err := app.Comments.Add(cmd.Context(), id, text)
	if err != nil {
		return err
	}
	return app.Render(commentListView{TaskID: id, Comments: []types.Comment{*comment}})
}

func runHistory(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	id := mustID(args[0])
	history, err := app.Comments.FetchHistory(cmd.Context(), id)
	if err != nil {
		return err
	}
	return app.Render(historyView{TaskID: id, History: history})
}
