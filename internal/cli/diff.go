package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/mapwatch/internal/diff"
	"github.com/rcliao/mapwatch/internal/model"
	"github.com/rcliao/mapwatch/internal/render"
	"github.com/rcliao/mapwatch/internal/smaps"
)

func init() {
	cmd := &cobra.Command{
		Use:   "diff PREV CUR",
		Short: "Diff two saved smaps dumps",
		Args:  cobra.ExactArgs(2),
		Run:   runDiff,
	}

	cmd.Flags().IntP("pid", "p", 0, "Process id to tag the snapshots with")
	cmd.Flags().BoolP("all", "a", false, "Report anonymous mappings appearing and disappearing too")

	RootCmd.AddCommand(cmd)
}

func runDiff(cmd *cobra.Command, args []string) {
	pid, _ := cmd.Flags().GetInt("pid")
	all, _ := cmd.Flags().GetBool("all")

	prev, err := parseFile(args[0], pid)
	if err != nil {
		exitErr("parse previous", err)
	}
	cur, err := parseFile(args[1], pid)
	if err != nil {
		exitErr("parse current", err)
	}

	r := diff.Diff(cur, prev)
	if !all {
		r = r.Filter(diff.Named)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(r, "", "  ")
		fmt.Println(string(b))
		return
	}
	render.Report(os.Stdout, r)
}

func parseFile(path string, pid int) (*model.Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	// Use the dump's mtime as the capture time so the report header
	// reflects when each dump was taken.
	return smaps.Parse(string(b), pid, info.ModTime())
}
