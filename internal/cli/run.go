package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scrapeworks/discovery/internal/ui"
)

var (
	runURL         string
	runMaxProducts int
)

var runCmd = &cobra.Command{
	Use:   "run <client>",
	Short: "Run a registered client",
	Long:  `Run resolves the named client through the client registry, creates it with its layered configuration, and executes its catalog walk.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		name := args[0]

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := a.Clients.Create(name, configPath, nil)
		if err != nil {
			return err
		}

		runArgs := map[string]any{}
		if runURL != "" {
			runArgs["url"] = runURL
		}
		if runMaxProducts > 0 {
			runArgs["max_products"] = runMaxProducts
		}

		result, err := client.Run(ctx, runArgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.Error("Run failed: "+err.Error()))
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Client %s finished", name)))
		keys := make([]string, 0, len(result))
		for k := range result {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %v\n", ui.Bold(k), result[k])
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runURL, "url", "u", "", "Base catalog URL override")
	runCmd.Flags().IntVar(&runMaxProducts, "max-products", 0, "Cap on products scraped")
	rootCmd.AddCommand(runCmd)
}
