// Package watch drives the capture-diff sampling loop.
package watch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rcliao/mapwatch/internal/diff"
	"github.com/rcliao/mapwatch/internal/model"
	"github.com/rcliao/mapwatch/internal/smaps"
)

// Source supplies raw smaps text for a process. Production uses
// procfs; tests substitute fixtures.
type Source func(pid int) (string, error)

// ProcSource reads /proc/<pid>/smaps.
func ProcSource(pid int) (string, error) {
	b, err := os.ReadFile(smaps.Filename(pid))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", smaps.Filename(pid), err)
	}
	return string(b), nil
}

// Sink receives the initial snapshot and each subsequent change report.
type Sink interface {
	Initial(s *model.Snapshot)
	Report(r *diff.Report)
}

// Config configures one watch session.
type Config struct {
	PID      int
	Interval time.Duration
	Source   Source
}

// Run samples the process until ctx is cancelled or a capture fails.
// It keeps exactly two snapshots live: the previous and the current
// one, rotated each tick. The first failed capture or parse after the
// initial snapshot ends the session with that error; sampling a dying
// process is expected to end this way.
func Run(ctx context.Context, cfg Config, sink Sink) error {
	prev, err := capture(cfg)
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	sink.Initial(prev)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		cur, err := capture(cfg)
		if err != nil {
			return err
		}
		sink.Report(diff.Diff(cur, prev))
		prev = cur
	}
}

func capture(cfg Config) (*model.Snapshot, error) {
	text, err := cfg.Source(cfg.PID)
	if err != nil {
		return nil, err
	}
	return smaps.Parse(text, cfg.PID, time.Now())
}
