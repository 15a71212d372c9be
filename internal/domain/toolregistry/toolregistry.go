// Package toolregistry defines the ToolRegistry resource: a catalog of
// external tools an agent runtime may invoke.
package toolregistry

import "github.com/perchlabs/perch/internal/domain/resource"

// Phase represents the backend-reported state of a tool registry.
type Phase string

const (
	PhasePending  Phase = "Pending"
	PhaseReady    Phase = "Ready"
	PhaseDegraded Phase = "Degraded"
	PhaseFailed   Phase = "Failed"
)

// Tool describes one registered tool.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
}

// Spec holds the desired state of a tool registry.
type Spec struct {
	Tools []Tool `json:"tools,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Status holds the observed state reported by the operator.
type Status struct {
	Phase      Phase                `json:"phase"`
	ToolCount  int                  `json:"tool_count,omitempty"`
	Conditions []resource.Condition `json:"conditions,omitempty"`
	Message    string               `json:"message,omitempty"`
}

// ToolRegistry is a catalog of tools available to agents.
type ToolRegistry struct {
	Meta   resource.Meta `json:"metadata"`
	Spec   Spec          `json:"spec"`
	Status Status        `json:"status"`
}

// CreateRequest holds the fields needed to create a tool registry.
type CreateRequest struct {
	Name string `json:"name"`
	Spec Spec   `json:"spec"`
}
