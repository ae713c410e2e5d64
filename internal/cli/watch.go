package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/mapwatch/internal/diff"
	"github.com/rcliao/mapwatch/internal/model"
	"github.com/rcliao/mapwatch/internal/render"
	"github.com/rcliao/mapwatch/internal/watch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch PID",
		Short: "Sample a process's mappings and report changes",
		Args:  cobra.ExactArgs(1),
		Run:   runWatch,
	}

	cmd.Flags().DurationP("interval", "i", time.Second, "Sampling interval")
	cmd.Flags().BoolP("all", "a", false, "Report anonymous mappings appearing and disappearing too")

	RootCmd.AddCommand(cmd)
}

// watchSink renders snapshots and reports as they arrive.
type watchSink struct {
	all    bool
	format string
}

func (s *watchSink) Initial(snap *model.Snapshot) {
	if s.format == "json" {
		b, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Println("Got initial maps of process:")
	render.Snapshot(os.Stdout, snap)
	fmt.Println("Starting to observe...")
}

func (s *watchSink) Report(r *diff.Report) {
	if !s.all {
		r = r.Filter(diff.Named)
	}
	if s.format == "json" {
		if r.Empty() {
			return
		}
		b, _ := json.MarshalIndent(r, "", "  ")
		fmt.Println(string(b))
		return
	}
	render.Report(os.Stdout, r)
}

func runWatch(cmd *cobra.Command, args []string) {
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		exitErr("bad pid", err)
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	all, _ := cmd.Flags().GetBool("all")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = watch.Run(ctx, watch.Config{
		PID:      pid,
		Interval: interval,
		Source:   watch.ProcSource,
	}, &watchSink{all: all, format: formatFlag})
	if err != nil {
		exitErr("watch", err)
	}
	fmt.Println("Goodbye!")
}
