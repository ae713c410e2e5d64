// Package smaps parses /proc/<pid>/smaps into snapshots.
package smaps

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/mapwatch/internal/model"
)

// Each mapping block carries at least 21 attribute lines plus the
// terminating VmFlags line. The optional ProtectionKey line makes it
// one more.
const (
	minBlockLines  = 22
	pkeyBlockLines = 23
	vmFlagsMarker  = "VmFlags"
)

// ParseError describes a structural violation in smaps input. Malformed
// numeric and hexadecimal values are structural violations too: kernel
// output is trusted but a bad snapshot must never take the tool down.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("parse smaps: %s", e.Reason)
	}
	return fmt.Sprintf("parse smaps: %s: %q", e.Reason, e.Line)
}

var (
	entropyMu sync.Mutex
	entropy   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func newID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// cursor is a forward-only position in pre-split input lines.
type cursor struct {
	lines []string
	pos   int
}

func (c *cursor) next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

// Parse converts one full smaps text into a Snapshot. It is
// all-or-nothing: any structural violation in any block discards the
// whole snapshot. Mappings come out in encounter order, which the
// kernel guarantees is ascending by start address.
func Parse(text string, pid int, at time.Time) (*model.Snapshot, error) {
	cur := &cursor{lines: strings.Split(text, "\n")}
	snap := &model.Snapshot{
		ID:         newID(at),
		PID:        pid,
		CapturedAt: at,
	}
	for {
		m, err := parseMapping(cur)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return snap, nil
		}
		snap.Mappings = append(snap.Mappings, *m)
	}
}

// parseMapping reads one mapping block from the cursor. It returns
// (nil, nil) when the cursor is exhausted before a header line is
// read; once a header has been consumed, running out of input is a
// structural error.
func parseMapping(cur *cursor) (*model.Mapping, error) {
	header, ok := cur.next()
	if !ok || header == "" {
		return nil, nil
	}

	fields := strings.Fields(header)
	if len(fields) < 5 {
		return nil, &ParseError{Line: header, Reason: "header has fewer than 5 fields"}
	}

	bounds := strings.Split(fields[0], "-")
	if len(bounds) != 2 {
		return nil, &ParseError{Line: fields[0], Reason: "bad address range"}
	}
	start, err := parseHex(bounds[0], 64)
	if err != nil {
		return nil, &ParseError{Line: header, Reason: fmt.Sprintf("bad start address %q", bounds[0])}
	}
	end, err := parseHex(bounds[1], 64)
	if err != nil {
		return nil, &ParseError{Line: header, Reason: fmt.Sprintf("bad end address %q", bounds[1])}
	}

	dev := strings.Split(fields[3], ":")
	if len(dev) != 2 {
		return nil, &ParseError{Line: fields[3], Reason: "bad device"}
	}
	devMajor, err := parseHex(dev[0], 32)
	if err != nil {
		return nil, &ParseError{Line: header, Reason: fmt.Sprintf("bad device major %q", dev[0])}
	}
	devMinor, err := parseHex(dev[1], 32)
	if err != nil {
		return nil, &ParseError{Line: header, Reason: fmt.Sprintf("bad device minor %q", dev[1])}
	}

	// Attribute lines run up to and including the VmFlags line.
	var attrs []string
	for {
		line, ok := cur.next()
		if !ok {
			return nil, &ParseError{Line: header, Reason: "input ended before VmFlags line"}
		}
		attrs = append(attrs, line)
		if strings.HasPrefix(line, vmFlagsMarker) {
			break
		}
	}
	if len(attrs) < minBlockLines {
		return nil, &ParseError{Line: header, Reason: fmt.Sprintf("expected at least %d attribute lines, got %d", minBlockLines, len(attrs))}
	}

	m := &model.Mapping{
		Start:    start,
		End:      end,
		Perms:    fields[1],
		Offset:   fields[2],
		DevMajor: uint32(devMajor),
		DevMinor: uint32(devMinor),
		Inode:    fields[4],
		Name:     strings.Join(fields[5:], " "),
		VMFlags:  attrs[len(attrs)-1],
	}

	// The quantity lines are positional; the kernel emits them in a
	// fixed order.
	quantities := []*uint64{
		&m.Size, &m.KernelPageSize, &m.MMUPageSize, &m.Rss, &m.Pss,
		&m.SharedClean, &m.SharedDirty, &m.PrivateClean, &m.PrivateDirty,
		&m.Referenced, &m.Anonymous, &m.LazyFree, &m.AnonHugePages,
		&m.ShmemPmdMapped, &m.FilePmdMapped, &m.SharedHugetlb,
		&m.PrivateHugetlb, &m.Swap, &m.SwapPss, &m.Locked,
	}
	for i, q := range quantities {
		v, err := attrValue(attrs[i])
		if err != nil {
			return nil, err
		}
		*q = v
	}

	thp, err := attrValue(attrs[20])
	if err != nil {
		return nil, err
	}
	m.THPEligible = thp != 0

	// ProtectionKey appears only on kernels that report it; the block
	// then has one extra line before VmFlags.
	if len(attrs) == pkeyBlockLines {
		pkey, err := attrValue(attrs[21])
		if err != nil {
			return nil, err
		}
		m.ProtectionKey = pkey
	}

	return m, nil
}

// attrValue extracts the numeric value of one attribute line
// ("Rss:  128 kB"). Lines without a second field decode as 0.
func attrValue(line string) (uint64, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return 0, nil
	}
	v, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, &ParseError{Line: line, Reason: "attribute value is not a number"}
	}
	return v, nil
}

func parseHex(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 16, bits)
}
