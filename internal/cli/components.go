package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/internal/rails"
)

var componentsCmd = &cobra.Command{
	Use:   "components <Model>",
	Short: "Locate the conventional files related to a model",
	Long: `Components resolves the Rails-convention paths for a model: its
controller, views, specs, factory, serializer and create migration.
Resolution is by filesystem naming only; missing files are omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := workspaceRoot()
		if err != nil {
			return err
		}

		c := rails.NewResolver(root).Components(args[0])
		if jsonFlag {
			return printJSON(cmd, c)
		}

		out := cmd.OutOrStdout()
		printComponent(cmd, "Model", c.Model)
		printComponent(cmd, "Controller", c.Controller)
		printComponent(cmd, "Serializer", c.Serializer)
		printComponent(cmd, "Factory", c.Factory)
		printComponent(cmd, "Migration", c.Migration)
		for _, v := range c.Views {
			fmt.Fprintf(out, "View:        %s\n", v)
		}
		kinds := make([]string, 0, len(c.Specs))
		for kind := range c.Specs {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(out, "Spec (%s): %s\n", kind, c.Specs[kind])
		}
		return nil
	},
}

func printComponent(cmd *cobra.Command, label, path string) {
	if path == "" {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", label+":", path)
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}
