package main

import (
	"github.com/scrapeworks/discovery/internal/cli"

	// Link the bundled clients and plugins into the binary so their
	// factories land in the registries.
	_ "github.com/scrapeworks/discovery/clients/agar"
	_ "github.com/scrapeworks/discovery/plugins/categories"
	_ "github.com/scrapeworks/discovery/plugins/documents"
	_ "github.com/scrapeworks/discovery/plugins/download"
	_ "github.com/scrapeworks/discovery/plugins/extract"
	_ "github.com/scrapeworks/discovery/plugins/markdown"
	_ "github.com/scrapeworks/discovery/plugins/media"
)

func main() {
	cli.Execute()
}
