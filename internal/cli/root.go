// Package cli implements the mapwatch CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var formatFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mapwatch",
	Short: "Watch a process's memory mappings for changes",
	Long:  "Samples /proc/<pid>/smaps on an interval and reports mapping churn: new mappings, dropped mappings, and size/RSS changes on mappings that persist.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text or json")
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
