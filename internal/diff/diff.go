// Package diff compares two snapshots of the same process.
package diff

import (
	"fmt"
	"time"

	"github.com/rcliao/mapwatch/internal/model"
)

// Kind classifies one report entry.
type Kind string

const (
	// Appeared marks a mapping present only in the current snapshot.
	Appeared Kind = "appeared"
	// Disappeared marks a mapping present only in the previous snapshot.
	Disappeared Kind = "disappeared"
	// Changed marks a mapping present in both with differing attributes.
	Changed Kind = "changed"
)

// FieldDiff records one attribute that changed between snapshots.
type FieldDiff struct {
	Field string `json:"field"`
	Old   uint64 `json:"old"`
	New   uint64 `json:"new"`
}

// Entry is the verdict for one start address. Mapping holds the
// current record for Appeared and Changed, the previous record for
// Disappeared. Fields is populated only for Changed and carries one
// FieldDiff per attribute that actually differs.
type Entry struct {
	Kind    Kind          `json:"kind"`
	Mapping model.Mapping `json:"mapping"`
	Fields  []FieldDiff   `json:"fields,omitempty"`
}

// Report is the classified difference between two snapshots, ordered
// ascending by start address.
type Report struct {
	PID     int       `json:"pid"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Entries []Entry   `json:"entries"`
}

// Empty reports whether no mapping changed between the snapshots.
func (r *Report) Empty() bool {
	return len(r.Entries) == 0
}

// Filter returns a copy of the report keeping only entries for which
// keep returns true.
func (r *Report) Filter(keep func(Entry) bool) *Report {
	out := &Report{PID: r.PID, From: r.From, To: r.To}
	for _, e := range r.Entries {
		if keep(e) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Named is the stock report filter: anonymous mappings churned by the
// allocator are noise, so their appearance and disappearance is
// suppressed. A persisting anonymous mapping whose measurements moved
// is still reported.
func Named(e Entry) bool {
	return e.Kind == Changed || !e.Mapping.Anon()
}

// Diff produces the change report between two snapshots of the same
// process. Both snapshots must be sorted ascending by start address;
// Diff runs a single linear merge and never re-sorts. Passing
// snapshots of different processes is a caller bug and panics.
func Diff(cur, prev *model.Snapshot) *Report {
	if cur.PID != prev.PID {
		panic(fmt.Sprintf("diff: snapshot pid mismatch: %d vs %d", cur.PID, prev.PID))
	}

	r := &Report{PID: cur.PID, From: prev.CapturedAt, To: cur.CapturedAt}

	i, j := 0, 0
	for i < len(cur.Mappings) && j < len(prev.Mappings) {
		m, p := &cur.Mappings[i], &prev.Mappings[j]
		switch {
		case m.Start < p.Start:
			r.Entries = append(r.Entries, Entry{Kind: Appeared, Mapping: *m})
			i++
		case m.Start > p.Start:
			r.Entries = append(r.Entries, Entry{Kind: Disappeared, Mapping: *p})
			j++
		default:
			if fields := compare(m, p); len(fields) > 0 {
				r.Entries = append(r.Entries, Entry{Kind: Changed, Mapping: *m, Fields: fields})
			}
			i++
			j++
		}
	}
	for ; i < len(cur.Mappings); i++ {
		r.Entries = append(r.Entries, Entry{Kind: Appeared, Mapping: cur.Mappings[i]})
	}
	for ; j < len(prev.Mappings); j++ {
		r.Entries = append(r.Entries, Entry{Kind: Disappeared, Mapping: prev.Mappings[j]})
	}

	return r
}

func compare(m, p *model.Mapping) []FieldDiff {
	var fields []FieldDiff
	if m.End != p.End {
		fields = append(fields, FieldDiff{Field: "end", Old: p.End, New: m.End})
	}
	if m.Size != p.Size {
		fields = append(fields, FieldDiff{Field: "size", Old: p.Size, New: m.Size})
	}
	if m.Rss != p.Rss {
		fields = append(fields, FieldDiff{Field: "rss", Old: p.Rss, New: m.Rss})
	}
	return fields
}
