package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/internal/rails"
)

var routesActionFlag string

var routesCmd = &cobra.Command{
	Use:   "routes [controller]",
	Short: "List parsed routes, optionally for one controller",
	Long: `Routes prints the route table parsed from config/routes.rb. With a
controller class name argument it narrows to that controller; --action
additionally narrows to one route.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		if ws.Routes == nil {
			return fmt.Errorf("no routes file found at %s", ws.Config.Rails.RoutesPath)
		}

		var routes []rails.Route
		switch {
		case len(args) == 1 && routesActionFlag != "":
			r, ok := ws.Routes.RouteInfo(args[0], routesActionFlag)
			if !ok {
				return fmt.Errorf("no route for %s#%s", args[0], routesActionFlag)
			}
			routes = []rails.Route{r}
		case len(args) == 1:
			routes = ws.Routes.ControllerRoutes(args[0])
		default:
			routes = ws.Routes.Routes()
		}

		if jsonFlag {
			return printJSON(cmd, routes)
		}
		if len(routes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No routes.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERB\tPATH\tCONTROLLER#ACTION\tNAME")
		for _, r := range routes {
			fmt.Fprintf(w, "%s\t%s\t%s#%s\t%s\n", r.Verb, r.Path, r.Controller, r.Action, r.Name)
		}
		return w.Flush()
	},
}

func init() {
	routesCmd.Flags().StringVar(&routesActionFlag, "action", "", "narrow to one action of the given controller")
	rootCmd.AddCommand(routesCmd)
}
