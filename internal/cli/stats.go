package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registry statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()

		ps := a.Plugins.Statistics()
		fmt.Println(ui.Bold("Plugins"))
		fmt.Printf("  total: %d\n", ps.Total)
		types := make([]string, 0, len(ps.ByType))
		for typ := range ps.ByType {
			types = append(types, string(typ))
		}
		sort.Strings(types)
		for _, typ := range types {
			fmt.Printf("  %s: %d\n", typ, ps.ByType[plugin.Type(typ)])
		}
		fmt.Printf("  instances: %d\n", ps.InstancesCreated)
		fmt.Printf("  with dependencies: %d\n", ps.WithDependencies)

		cs := a.Clients.Statistics()
		fmt.Println(ui.Bold("Clients"))
		fmt.Printf("  total: %d\n", cs.Total)
		sort.Strings(cs.Names)
		for _, name := range cs.Names {
			fmt.Printf("  - %s\n", name)
		}
		caps := make([]string, 0, len(cs.Capabilities))
		for c := range cs.Capabilities {
			caps = append(caps, c)
		}
		sort.Strings(caps)
		for _, c := range caps {
			fmt.Printf("  %s: %d\n", c, cs.Capabilities[c])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
