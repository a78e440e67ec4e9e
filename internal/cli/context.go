// Package cli provides the discovery command-line interface.
package cli

import (
	"github.com/scrapeworks/discovery/internal/app"
)

// globalApp is the process-wide application instance set up by the root
// command's PersistentPreRunE and torn down in PersistentPostRun.
var globalApp *app.Application

// SetApp stores the Application for commands to access.
func SetApp(a *app.Application) { globalApp = a }

// GetApp retrieves the Application, or nil before initialization.
func GetApp() *app.Application { return globalApp }
