// Package ui holds the ANSI styling helpers the CLI prints with.
package ui

const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
)

// Bold emphasizes a label.
func Bold(s string) string {
	return ColorBold + s + ColorReset
}

// Success styles a completed-action message.
func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Info styles a secondary notice.
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Error styles a failure message.
func Error(s string) string {
	return ColorRed + s + ColorReset
}
