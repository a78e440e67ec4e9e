package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scrapeworks/discovery/internal/ui"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Inspect the client registry",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		names := a.Clients.List()
		sort.Strings(names)

		if len(names) == 0 {
			fmt.Println(ui.Info("No clients registered"))
			return nil
		}
		for _, name := range names {
			d, _ := a.Clients.Info(name)
			line := fmt.Sprintf("%s  v%s", ui.Bold(name), d.Version)
			if d.Description != "" {
				line += "  " + d.Description
			}
			if len(d.Capabilities) > 0 {
				line += "  [" + strings.Join(d.Capabilities, ", ") + "]"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var clientsValidateCmd = &cobra.Command{
	Use:   "validate <client>",
	Short: "Check a client's interface conformance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		v := a.Clients.ValidateClient(args[0])

		for _, w := range v.Warnings {
			fmt.Println(ui.Info("warning: " + w))
		}
		if !v.Valid {
			for _, e := range v.Errors {
				fmt.Println(ui.Error("error: " + e))
			}
			return fmt.Errorf("client %q failed validation", args[0])
		}
		fmt.Println(ui.Success(args[0] + " conforms to the client contract"))
		return nil
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd, clientsValidateCmd)
	rootCmd.AddCommand(clientsCmd)
}
