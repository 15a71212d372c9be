package resource

// Limits defines sandbox resource constraints for agent runtime replicas.
// Zero values mean "unset"; resolution against defaults and ceilings
// happens in the agentruntime package.
type Limits struct {
	MemoryMB    int    `json:"memory_mb,omitempty" yaml:"memory_mb,omitempty"`
	CPUQuota    int    `json:"cpu_quota,omitempty" yaml:"cpu_quota,omitempty"`
	PidsLimit   int    `json:"pids_limit,omitempty" yaml:"pids_limit,omitempty"`
	StorageGB   int    `json:"storage_gb,omitempty" yaml:"storage_gb,omitempty"`
	NetworkMode string `json:"network_mode,omitempty" yaml:"network_mode,omitempty"`
}

// Merge overlays override onto base: set fields win, unset fields inherit.
func Merge(base, override Limits) Limits {
	return Limits{
		MemoryMB:    pick(base.MemoryMB, override.MemoryMB),
		CPUQuota:    pick(base.CPUQuota, override.CPUQuota),
		PidsLimit:   pick(base.PidsLimit, override.PidsLimit),
		StorageGB:   pick(base.StorageGB, override.StorageGB),
		NetworkMode: pickStr(base.NetworkMode, override.NetworkMode),
	}
}

// Cap bounds each numeric field by the corresponding ceiling field. A zero
// ceiling field means uncapped; NetworkMode is never capped.
func Cap(limits, ceiling Limits) Limits {
	return Limits{
		MemoryMB:    bound(limits.MemoryMB, ceiling.MemoryMB),
		CPUQuota:    bound(limits.CPUQuota, ceiling.CPUQuota),
		PidsLimit:   bound(limits.PidsLimit, ceiling.PidsLimit),
		StorageGB:   bound(limits.StorageGB, ceiling.StorageGB),
		NetworkMode: limits.NetworkMode,
	}
}

func pick(base, override int) int {
	if override > 0 {
		return override
	}
	return base
}

func pickStr(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func bound(v, ceiling int) int {
	if ceiling > 0 && v > ceiling {
		return ceiling
	}
	return v
}
