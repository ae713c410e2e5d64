// Package model defines the mapping and snapshot data types.
package model

import "time"

// Mapping is one virtual memory mapping of a process at one point in
// time, as reported by /proc/<pid>/smaps. All quantity fields are in
// kilobytes. Mappings are immutable once parsed.
type Mapping struct {
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	Perms    string `json:"perms"`
	Offset   string `json:"offset"`
	DevMajor uint32 `json:"dev_major"`
	DevMinor uint32 `json:"dev_minor"`
	Inode    string `json:"inode"`
	Name     string `json:"name,omitempty"`

	Size           uint64 `json:"size"`
	KernelPageSize uint64 `json:"kernel_page_size"`
	MMUPageSize    uint64 `json:"mmu_page_size"`
	Rss            uint64 `json:"rss"`
	Pss            uint64 `json:"pss"`
	SharedClean    uint64 `json:"shared_clean"`
	SharedDirty    uint64 `json:"shared_dirty"`
	PrivateClean   uint64 `json:"private_clean"`
	PrivateDirty   uint64 `json:"private_dirty"`
	Referenced     uint64 `json:"referenced"`
	Anonymous      uint64 `json:"anonymous"`
	LazyFree       uint64 `json:"lazy_free"`
	AnonHugePages  uint64 `json:"anon_huge_pages"`
	ShmemPmdMapped uint64 `json:"shmem_pmd_mapped"`
	FilePmdMapped  uint64 `json:"file_pmd_mapped"`
	SharedHugetlb  uint64 `json:"shared_hugetlb"`
	PrivateHugetlb uint64 `json:"private_hugetlb"`
	Swap           uint64 `json:"swap"`
	SwapPss        uint64 `json:"swap_pss"`
	Locked         uint64 `json:"locked"`

	THPEligible   bool   `json:"thp_eligible"`
	ProtectionKey uint64 `json:"protection_key"`
	VMFlags       string `json:"vmflags"`
}

// Anon reports whether the mapping has no backing name (anonymous
// allocator memory).
func (m *Mapping) Anon() bool {
	return m.Name == ""
}

// Snapshot is the complete set of mappings of one process captured at
// one instant. Mappings are sorted ascending by Start; the kernel
// emits them in address order and nothing here re-sorts them.
type Snapshot struct {
	ID         string    `json:"id"`
	PID        int       `json:"pid"`
	CapturedAt time.Time `json:"captured_at"`
	Mappings   []Mapping `json:"mappings"`
}
