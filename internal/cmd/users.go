package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/tui"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

const usersRoute = "/admin/users"

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage user accounts (admin only)",
	Long: `Manage user accounts. Every users command is an administrative view and
requires a logged in admin.

Roles: admin, user, worker.

Examples:
  taskboard users list
  taskboard users create --email bob@example.com --full-name "Bob Stone" --role worker
  taskboard users update 4 --role user
  taskboard users toggle-active 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var usersListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List users",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: usersRoute},
	RunE:        runUsersList,
}

var usersGetCmd = &cobra.Command{
	Use:         "get <user-id>",
	Short:       "Show one user",
	Args:        idArgs("user id"),
	Annotations: map[string]string{routeAnnotation: usersRoute},
	RunE:        runUsersGet,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user. The password is read from --password-stdin or prompted
for in a terminal. Without --role a terminal session picks the role from a list.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: usersRoute},
	RunE:        runUsersCreate,
}

var usersUpdateCmd = &cobra.Command{
	Use:         "update <user-id>",
	Short:       "Update a user",
	Long:        `Update a user. Only the flags given are changed.`,
	Args:        idArgs("user id"),
	Annotations: map[string]string{routeAnnotation: usersRoute},
	RunE:        runUsersUpdate,
}

var usersDeleteCmd = &cobra.Command{
	Use:         "delete <user-id>",
	Short:       "Delete a user",
	Args:        idArgs("user id"),
	Annotations: map[string]string{routeAnnotation: usersRoute},
	RunE:        runUsersDelete,
}

var usersToggleActiveCmd = &cobra.Command{
	Use:         "toggle-active <user-id>",
	Short:       "Activate or deactivate a user",
	Args:        idArgs("user id"),
	Annotations: map[string]string{routeAnnotation: usersRoute},
	RunE:        runUsersToggleActive,
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersToggleActiveCmd)

	usersListCmd.Flags().Int("skip", 0, "number of users to skip")
	usersListCmd.Flags().Int("limit", 0, "maximum number of users (default defaults.page_size)")

	usersCreateCmd.Flags().String("email", "", "email address")
	usersCreateCmd.Flags().String("full-name", "", "full name")
	usersCreateCmd.Flags().String("role", string(types.RoleUser), "role: admin, user, worker")
	usersCreateCmd.Flags().Bool("inactive", false, "create the account deactivated")
	usersCreateCmd.Flags().Bool("password-stdin", false, "read the password from stdin")

	usersUpdateCmd.Flags().String("email", "", "new email address")
	usersUpdateCmd.Flags().String("full-name", "", "new full name")
	usersUpdateCmd.Flags().String("role", "", "new role")
	usersUpdateCmd.Flags().Bool("active", true, "set the active flag")

	usersDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	skip, _ := cmd.Flags().GetInt("skip")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = app.Config.Defaults.PageSize
	}

	users, err := app.Users.Fetch(cmd.Context(), skip, limit)
	if err != nil {
		return err
	}
	return app.Render(userListView{Users: users})
}

func runUsersGet(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	user, err := app.Users.Get(cmd.Context(), mustID(args[0]))
	if err != nil {
		return err
	}
	return app.Render(userView{User: user})
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	email, _ := flags.GetString("email")
	fullName, _ := flags.GetString("full-name")
	roleName, _ := flags.GetString("role")
	inactive, _ := flags.GetBool("inactive")
	fromStdin, _ := flags.GetBool("password-stdin")

	if !flags.Changed("role") && tui.ShouldPrompt() {
		options := make([]string, 0, len(types.Roles()))
		for _, r := range types.Roles() {
			options = append(options, string(r))
		}
		if roleName, err = tui.PromptForSelect("Role for the new user", options); err != nil {
			return err
		}
	}

	role, err := types.ParseRole(roleName)
	if err != nil {
		return usageError("%v", err)
	}

	var password string
	switch {
	case fromStdin:
		password, err = tui.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "")
	case tui.ShouldPrompt():
		password, err = tui.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password for the new user: ")
	default:
		err = usageError("--password-stdin is required when not running interactively")
	}
	if err != nil {
		return err
	}

	user, err := app.Users.Create(cmd.Context(), types.UserCreate{
		Email:    strings.TrimSpace(email),
		Password: password,
		FullName: strings.TrimSpace(fullName),
		Role:     role,
		IsActive: !inactive,
	})
	if err != nil {
		return err
	}
	return app.Render(userView{User: user})
}

func runUsersUpdate(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var update types.UserUpdate
	if flags.Changed("email") {
		email, _ := flags.GetString("email")
		update.Email = &email
	}
	if flags.Changed("full-name") {
		name, _ := flags.GetString("full-name")
		update.FullName = &name
	}
	if flags.Changed("role") {
		r, _ := flags.GetString("role")
		role := types.Role(strings.ToLower(r))
		update.Role = &role
	}
	if flags.Changed("active") {
		active, _ := flags.GetBool("active")
		update.IsActive = &active
	}
	if update == (types.UserUpdate{}) {
		return usageError("nothing to update: pass at least one of --email, --full-name, --role, --active")
	}

	user, err := app.Users.Update(cmd.Context(), mustID(args[0]), update)
	if err != nil {
		return err
	}
	return app.Render(userView{User: user})
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	id := mustID(args[0])
	ok, err := confirm(cmd, fmt.Sprintf("Delete user #%d?", id))
	if err != nil || !ok {
		return err
	}

	if err := app.Users.Delete(cmd.Context(), id); err != nil {
		return err
	}
	return app.Render(message{Message: fmt.Sprintf("Deleted user #%d.", id)})
}

func runUsersToggleActive(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	user, err := app.Users.ToggleActive(cmd.Context(), mustID(args[0]))
	if err != nil {
		return err
	}
	return app.Render(userView{User: user})
}
