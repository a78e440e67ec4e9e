package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrapeworks/discovery/internal/app"
)

var (
	verbose    bool
	configPath string
	pluginDir  string
	clientDir  string
)

// rootCmd is the base command; subcommands attach in their own init
// functions.
var rootCmd = &cobra.Command{
	Use:     "discovery",
	Short:   "Pluggable product catalog scraper",
	Long:    `Discovery walks product catalogs through registered clients and plugins, emitting normalized JSON, CSV, and Markdown outputs.`,
	Version: "1.0.0",
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Explicit config file merged last")
	rootCmd.PersistentFlags().StringVar(&pluginDir, "plugin-dir", "", "Directory scanned for plugin manifests")
	rootCmd.PersistentFlags().StringVar(&clientDir, "client-dir", "", "Directory scanned for client packages")

	// Initialize the application lazily so -h/--help stays cheap.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		a, err := app.New(ctx, app.Options{
			ConfigPath: configPath,
			Verbose:    verbose,
			PluginDir:  pluginDir,
			ClientDir:  clientDir,
		})
		if err != nil {
			return err
		}
		SetApp(a)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetApp()
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.Close(ctx)
		SetApp(nil)
	}
}
