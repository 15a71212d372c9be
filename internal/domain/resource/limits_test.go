package resource_test

import (
	"testing"

	"github.com/perchlabs/perch/internal/domain/resource"
)

func TestMergeUnsetInheritsBase(t *testing.T) {
	base := resource.Limits{MemoryMB: 512, CPUQuota: 1000, PidsLimit: 100, StorageGB: 10, NetworkMode: "none"}

	got := resource.Merge(base, resource.Limits{})
	if got != base {
		t.Fatalf("expected base unchanged, got %+v", got)
	}
}

func TestMergeSetFieldsWin(t *testing.T) {
	base := resource.Limits{MemoryMB: 512, CPUQuota: 1000, PidsLimit: 100, StorageGB: 10, NetworkMode: "none"}
	override := resource.Limits{MemoryMB: 1024, NetworkMode: "bridge"}

	got := resource.Merge(base, override)
	if got.MemoryMB != 1024 || got.NetworkMode != "bridge" {
		t.Fatalf("expected overridden memory and network mode, got %+v", got)
	}
	if got.CPUQuota != 1000 || got.PidsLimit != 100 || got.StorageGB != 10 {
		t.Fatalf("expected unset fields inherited, got %+v", got)
	}
}

func TestCapBoundsEachField(t *testing.T) {
	limits := resource.Limits{MemoryMB: 2048, CPUQuota: 4000, PidsLimit: 500, StorageGB: 50, NetworkMode: "host"}
	ceiling := resource.Limits{MemoryMB: 1024, CPUQuota: 2000, PidsLimit: 200, StorageGB: 20}

	got := resource.Cap(limits, ceiling)
	want := resource.Limits{MemoryMB: 1024, CPUQuota: 2000, PidsLimit: 200, StorageGB: 20, NetworkMode: "host"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestCapZeroCeilingIsUncapped(t *testing.T) {
	limits := resource.Limits{MemoryMB: 4096, CPUQuota: 1000}

	got := resource.Cap(limits, resource.Limits{CPUQuota: 500})
	if got.MemoryMB != 4096 {
		t.Fatalf("expected memory uncapped, got %d", got.MemoryMB)
	}
	if got.CPUQuota != 500 {
		t.Fatalf("expected cpu quota capped to 500, got %d", got.CPUQuota)
	}
}

func TestCapUnderCeilingUnchanged(t *testing.T) {
	limits := resource.Limits{MemoryMB: 512, CPUQuota: 1000, PidsLimit: 100, StorageGB: 10}
	ceiling := resource.Limits{MemoryMB: 1024, CPUQuota: 2000, PidsLimit: 200, StorageGB: 20}

	if got := resource.Cap(limits, ceiling); got != limits {
		t.Fatalf("expected no capping, got %+v", got)
	}
}
