package smaps

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rcliao/mapwatch/internal/model"
)

// Filename returns the smaps path for a process.
func Filename(pid int) string {
	return "/proc/" + strconv.Itoa(pid) + "/smaps"
}

// Capture reads and parses the current smaps of a live process.
func Capture(pid int) (*model.Snapshot, error) {
	b, err := os.ReadFile(Filename(pid))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Filename(pid), err)
	}
	return Parse(string(b), pid, time.Now())
}
