package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/ui"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect the plugin registry",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered plugins by type",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		byType := a.Plugins.List()

		types := make([]string, 0, len(byType))
		for typ := range byType {
			types = append(types, string(typ))
		}
		sort.Strings(types)

		for _, typ := range types {
			names := byType[plugin.Type(typ)]
			if len(names) == 0 {
				continue
			}
			sort.Strings(names)
			fmt.Println(ui.Bold(typ + ":"))
			for _, name := range names {
				d, _ := a.Plugins.Info(name, plugin.Type(typ))
				fmt.Printf("  %s  v%s  %s\n", name, d.Version, d.Description)
			}
		}
		return nil
	},
}

var pluginsDepsCmd = &cobra.Command{
	Use:   "deps <type> <plugin>",
	Short: "Check a plugin's declared dependencies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		typ, name := plugin.Type(args[0]), args[1]

		deps := a.Plugins.CheckDependencies(name, typ)
		if deps == nil {
			return fmt.Errorf("plugin %s/%s not registered", typ, name)
		}
		if len(deps) == 0 {
			fmt.Println(ui.Success(name + " has no declared dependencies"))
			return nil
		}

		missing := 0
		for dep, ok := range deps {
			if ok {
				fmt.Println(ui.Success("  ok      " + dep))
			} else {
				fmt.Println(ui.Error("  missing " + dep))
				missing++
			}
		}
		if missing > 0 {
			return fmt.Errorf("%d dependencies missing", missing)
		}
		return nil
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd, pluginsDepsCmd)
	rootCmd.AddCommand(pluginsCmd)
}
