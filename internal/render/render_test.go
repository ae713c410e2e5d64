package render

import (
	"strings"
	"testing"
	"time"

	"github.com/rcliao/mapwatch/internal/diff"
	"github.com/rcliao/mapwatch/internal/model"
)

func TestEntry_Appeared(t *testing.T) {
	var b strings.Builder
	Entry(&b, diff.Entry{
		Kind:    diff.Appeared,
		Mapping: model.Mapping{Start: 0x5000, End: 0x6000, Size: 4, Rss: 4, Name: "b"},
	})
	got := b.String()
	if got != "MMAP: 5000-6000 size=4 rss=4 b\n" {
		t.Errorf("unexpected line: %q", got)
	}
}

func TestEntry_Disappeared(t *testing.T) {
	var b strings.Builder
	Entry(&b, diff.Entry{
		Kind:    diff.Disappeared,
		Mapping: model.Mapping{Start: 0x5000, End: 0x6000, Size: 4, Rss: 4, Name: "b"},
	})
	if !strings.HasPrefix(b.String(), "DROP: ") {
		t.Errorf("expected DROP prefix, got %q", b.String())
	}
}

func TestEntry_ChangedAnnotatesOnlyChangedFields(t *testing.T) {
	var b strings.Builder
	Entry(&b, diff.Entry{
		Kind:    diff.Changed,
		Mapping: model.Mapping{Start: 0x1000, End: 0x2000, Size: 4, Rss: 8, Name: "a"},
		Fields:  []diff.FieldDiff{{Field: "rss", Old: 4, New: 8}},
	})
	got := b.String()
	if got != "CHANGED: 1000-2000 size=4 rss=8 (was 4) a\n" {
		t.Errorf("unexpected line: %q", got)
	}
	if strings.Count(got, "(was") != 1 {
		t.Errorf("expected exactly one annotation, got %q", got)
	}
}

func TestReport_HeaderAndEmpty(t *testing.T) {
	from := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	to := from.Add(time.Second)
	var b strings.Builder
	Report(&b, &diff.Report{PID: 42, From: from, To: to})
	got := b.String()
	if !strings.Contains(got, "pid 42") {
		t.Errorf("expected pid in header, got %q", got)
	}
	if !strings.Contains(got, "2026-08-28T10:00:00Z") {
		t.Errorf("expected RFC3339 timestamps, got %q", got)
	}
	if !strings.Contains(got, "no changes") {
		t.Errorf("expected empty-report note, got %q", got)
	}
}

func TestSummary(t *testing.T) {
	s := &model.Snapshot{
		ID:  "01TEST",
		PID: 7,
		Mappings: []model.Mapping{
			{Size: 1024, Rss: 512},
			{Size: 1024, Rss: 512},
		},
	}
	var b strings.Builder
	Summary(&b, s)
	got := b.String()
	if !strings.Contains(got, "2 mappings") {
		t.Errorf("expected mapping count, got %q", got)
	}
	if !strings.Contains(got, "2.0 MiB") {
		t.Errorf("expected humanized size, got %q", got)
	}
	if !strings.Contains(got, "1.0 MiB") {
		t.Errorf("expected humanized rss, got %q", got)
	}
}

func TestMapping_AnonymousPlaceholder(t *testing.T) {
	var b strings.Builder
	Mapping(&b, &model.Mapping{Start: 0x1000, End: 0x2000, Perms: "rw-p", VMFlags: "VmFlags: rd wr"})
	if !strings.Contains(b.String(), "[anon]") {
		t.Errorf("expected [anon] placeholder, got %q", b.String())
	}
}
