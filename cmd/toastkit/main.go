package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┬┐┌─┐┌─┐┌─┐┌┬┐┬┌─┬┌┬┐
   │ │ │├─┤└─┐ │ ├┴┐│ │
   ┴ └─┘┴ ┴└─┘ ┴ ┴ ┴┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "toastkit",
		Short: "Headless toast notification engine for Go",
		Long: `Toastkit is a headless toast notification engine.

It owns the full behavioral lifecycle of transient notifications
and leaves rendering to the consumer:

  • Ordered queue with a visibility cap
  • Countdown timers with pause/resume accounting
  • Dedupe by id (ignore or refresh)
  • Snapshot subscriptions for any renderer
  • WebSocket bridge for remote renderers`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the toastkit ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
