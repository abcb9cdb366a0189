package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/router"
)

var navigateCmd = &cobra.Command{
	Use:   "navigate <path>",
	Short: "Show where the route gate sends a path",
	Long: `Run the route gate for a path with the current session and show the
decision. Redirects are followed until a view is reached.

Examples:
  taskboard navigate /admin/users
  taskboard navigate /tasks/7
  taskboard navigate --routes`,
	Args: func(cmd *cobra.Command, args []string) error {
		if listRoutes, _ := cmd.Flags().GetBool("routes"); listRoutes {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runNavigate,
}

func init() {
	navigateCmd.Flags().Bool("routes", false, "list the route table instead")
	rootCmd.AddCommand(navigateCmd)
}

type routeTableView struct {
	Routes []router.Route `json:"routes" yaml:"routes"`
}

func runNavigate(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	if listRoutes, _ := cmd.Flags().GetBool("routes"); listRoutes {
		return app.Render(routeTableView{Routes: app.Gate.Routes()})
	}

	first := app.Gate.Navigate(cmd.Context(), args[0])
	view := navigationView{
		Decision:    first,
		Destination: first.Path,
		Hops:        []string{first.Path},
	}

	if !first.Allowed() {
		final, hops, err := app.Gate.Follow(cmd.Context(), first.Target)
		view.Hops = append(view.Hops, hops...)
		if err != nil {
			return err
		}
		view.Destination = final.Path
	}
	return app.Render(view)
}
