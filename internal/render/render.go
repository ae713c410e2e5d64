// Package render formats mappings and change reports as text.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rcliao/mapwatch/internal/diff"
	"github.com/rcliao/mapwatch/internal/model"
)

// kb renders a kilobyte quantity in human units.
func kb(v uint64) string {
	return humanize.IBytes(v * 1024)
}

// Mapping writes a multi-line description of one mapping.
func Mapping(w io.Writer, m *model.Mapping) {
	name := m.Name
	if name == "" {
		name = "[anon]"
	}
	fmt.Fprintf(w, "%x-%x %s %s\n", m.Start, m.End, m.Perms, name)
	fmt.Fprintf(w, "  offset %s, device %x:%x, inode %s\n", m.Offset, m.DevMajor, m.DevMinor, m.Inode)
	fmt.Fprintf(w, "  size %s, rss %s, pss %s\n", kb(m.Size), kb(m.Rss), kb(m.Pss))
	fmt.Fprintf(w, "  shared %s clean / %s dirty, private %s clean / %s dirty\n",
		kb(m.SharedClean), kb(m.SharedDirty), kb(m.PrivateClean), kb(m.PrivateDirty))
	fmt.Fprintf(w, "  referenced %s, anonymous %s, lazy free %s\n",
		kb(m.Referenced), kb(m.Anonymous), kb(m.LazyFree))
	fmt.Fprintf(w, "  anon huge %s, shmem pmd %s, file pmd %s\n",
		kb(m.AnonHugePages), kb(m.ShmemPmdMapped), kb(m.FilePmdMapped))
	fmt.Fprintf(w, "  hugetlb %s shared / %s private, swap %s, swap pss %s, locked %s\n",
		kb(m.SharedHugetlb), kb(m.PrivateHugetlb), kb(m.Swap), kb(m.SwapPss), kb(m.Locked))
	fmt.Fprintf(w, "  thp eligible %v, protection key %d, %s\n",
		m.THPEligible, m.ProtectionKey, m.VMFlags)
}

// Snapshot writes every mapping of a snapshot followed by a summary line.
func Snapshot(w io.Writer, s *model.Snapshot) {
	for i := range s.Mappings {
		Mapping(w, &s.Mappings[i])
	}
	Summary(w, s)
}

// Summary writes a one-line total for a snapshot.
func Summary(w io.Writer, s *model.Snapshot) {
	var size, rss uint64
	for i := range s.Mappings {
		size += s.Mappings[i].Size
		rss += s.Mappings[i].Rss
	}
	fmt.Fprintf(w, "%s mappings, %s mapped, %s resident (pid %d, snapshot %s)\n",
		humanize.Comma(int64(len(s.Mappings))), kb(size), kb(rss), s.PID, s.ID)
}

// Report writes a change report, one line per entry. Changed fields
// carry a "(was N)" annotation with the previous value; unchanged
// fields carry none.
func Report(w io.Writer, r *diff.Report) {
	fmt.Fprintf(w, "Differences in maps of pid %d between %s and %s:\n",
		r.PID, r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	if r.Empty() {
		fmt.Fprintln(w, "  (no changes)")
		return
	}
	for _, e := range r.Entries {
		Entry(w, e)
	}
}

// Entry writes a single report line.
func Entry(w io.Writer, e diff.Entry) {
	m := e.Mapping
	switch e.Kind {
	case diff.Appeared:
		fmt.Fprintf(w, "MMAP: %x-%x size=%d rss=%d %s\n", m.Start, m.End, m.Size, m.Rss, m.Name)
	case diff.Disappeared:
		fmt.Fprintf(w, "DROP: %x-%x size=%d rss=%d %s\n", m.Start, m.End, m.Size, m.Rss, m.Name)
	case diff.Changed:
		was := map[string]string{}
		for _, f := range e.Fields {
			was[f.Field] = fmt.Sprintf(" (was %d)", f.Old)
		}
		fmt.Fprintf(w, "CHANGED: %x-%x%s size=%d%s rss=%d%s %s\n",
			m.Start, m.End, was["end"], m.Size, was["size"], m.Rss, was["rss"], m.Name)
	}
}
