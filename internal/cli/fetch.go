package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scrapeworks/discovery/internal/output"
	"github.com/scrapeworks/discovery/internal/ui"
	"github.com/scrapeworks/discovery/pkg/models"
)

var (
	fetchSelector string
	fetchJS       bool
	fetchOut      string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a single page and print or save its extraction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := models.RequestOptions{URL: args[0], Selector: fetchSelector}
		fetcher := a.Static
		var page *models.PageData
		var err error
		if fetchJS {
			page, err = a.Hybrid.Fetch(ctx, opts)
		} else {
			page, err = fetcher.Fetch(ctx, opts)
		}
		if err != nil {
			return err
		}

		if fetchOut != "" {
			if err := output.SavePageJSON(page, fetchOut); err != nil {
				return err
			}
			fmt.Println(ui.Success("Saved " + fetchOut))
			return nil
		}

		fmt.Println(ui.Bold(page.Title))
		fmt.Printf("status: %d  links: %d  images: %d  elapsed: %dms\n",
			page.StatusCode, len(page.Links), len(page.Images), page.ResponseTime)
		if page.Content != "" {
			fmt.Println(page.Content)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchSelector, "selector", "s", "", "CSS selector to extract")
	fetchCmd.Flags().BoolVar(&fetchJS, "js", false, "Run inline scripts after fetching")
	fetchCmd.Flags().StringVarP(&fetchOut, "output", "o", "", "Write the page JSON to a file")
	rootCmd.AddCommand(fetchCmd)
}
