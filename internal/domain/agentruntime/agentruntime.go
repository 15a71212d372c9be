// Package agentruntime defines the AgentRuntime resource: a deployed agent
// instance reconciled by the operator.
package agentruntime

import "github.com/perchlabs/perch/internal/domain/resource"

// Phase represents the backend-reported lifecycle phase of an agent runtime.
type Phase string

const (
	PhasePending Phase = "Pending"
	PhaseRunning Phase = "Running"
	PhaseFailed  Phase = "Failed"
)

// Spec holds the desired state of an agent runtime.
type Spec struct {
	Provider   string            `json:"provider"`
	Model      string            `json:"model,omitempty"`
	FacadeType string            `json:"facade_type,omitempty"`
	Replicas   int               `json:"replicas"`
	PromptPack string            `json:"prompt_pack,omitempty"`
	Tools      []string          `json:"tools,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	Limits     resource.Limits   `json:"limits,omitempty"`
}

// DefaultLimits is applied to runtimes whose spec leaves limits unset.
var DefaultLimits = resource.Limits{
	MemoryMB:    1024,
	CPUQuota:    2000,
	PidsLimit:   256,
	StorageGB:   10,
	NetworkMode: "bridge",
}

// CeilingLimits caps any user-supplied limits before a runtime is created.
var CeilingLimits = resource.Limits{
	MemoryMB:  8192,
	CPUQuota:  8000,
	PidsLimit: 1024,
	StorageGB: 100,
}

// EffectiveLimits resolves the limits a runtime actually runs with:
// spec values override the defaults, then the ceiling is enforced.
func EffectiveLimits(spec Spec) resource.Limits {
	return resource.Cap(resource.Merge(DefaultLimits, spec.Limits), CeilingLimits)
}

// Status holds the observed state reported by the operator.
type Status struct {
	Phase           Phase                `json:"phase"`
	ReadyReplicas   int                  `json:"ready_replicas"`
	UpdatedReplicas int                  `json:"updated_replicas,omitempty"`
	Conditions      []resource.Condition `json:"conditions,omitempty"`
	Message         string               `json:"message,omitempty"`
}

// AgentRuntime is a deployed agent instance.
type AgentRuntime struct {
	Meta   resource.Meta `json:"metadata"`
	Spec   Spec          `json:"spec"`
	Status Status        `json:"status"`
}

// CreateRequest holds the fields needed to create a new agent runtime.
type CreateRequest struct {
	Name string `json:"name"`
	Spec Spec   `json:"spec"`
}

// ScaleRequest adjusts the replica count of a running agent.
type ScaleRequest struct {
	Replicas int `json:"replicas"`
}

// LogOptions narrows a log request to a replica and tail length.
type LogOptions struct {
	Replica string
	Tail    int
}
