package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/mapwatch/internal/render"
	"github.com/rcliao/mapwatch/internal/smaps"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show PID",
		Short: "Print a one-shot snapshot of a process's mappings",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		exitErr("bad pid", err)
	}

	snap, err := smaps.Capture(pid)
	if err != nil {
		exitErr("capture", err)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(b))
		return
	}
	render.Snapshot(os.Stdout, snap)
}
