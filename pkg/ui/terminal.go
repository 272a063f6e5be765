package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Banner printed at the start of a scrape
const Banner = `
  ┌─┐┬  ┬┌─┐┬┌─┬─┐  ┌─┐┌─┐┬─┐┌─┐┌─┐┌─┐┬─┐
  ├┤ │  ││  ├┴┐├┬┘  └─┐│  ├┬┘├─┤├─┘├┤ ├┬┘
  └  ┴─┘┴└─┘┴ ┴┴└─  └─┘└─┘┴└─┴ ┴┴  └─┘┴└─
`

var (
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func Cyan(s string) string    { return cyanStyle.Render(s) }
func Yellow(s string) string  { return yellowStyle.Render(s) }
func Red(s string) string     { return redStyle.Render(s) }
func Green(s string) string   { return greenStyle.Render(s) }
func Magenta(s string) string { return magentaStyle.Render(s) }
func Dim(s string) string     { return dimStyle.Render(s) }

var (
	mu        sync.Mutex
	out       io.Writer = os.Stdout
	quietMode bool
)

// SetOutput redirects all terminal output; nil restores stdout
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return quietMode
}

func writer(always bool) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if quietMode && !always {
		return io.Discard
	}
	return out
}

// PrintBanner prints the banner
func PrintBanner() {
	fmt.Fprint(writer(false), Cyan(Banner))
}

// PrintError prints an error message in red, even in quiet mode
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(writer(true), Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(writer(false), Green(msg))
}

// PrintInfo prints "label: value"
func PrintInfo(label string, value string) {
	fmt.Fprintf(writer(false), "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(writer(false), Yellow(msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(writer(false), Magenta(msg))
}
