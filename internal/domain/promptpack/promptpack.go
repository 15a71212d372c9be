// Package promptpack defines the PromptPack resource: a versioned bundle of
// system prompts and templates consumed by agent runtimes.
package promptpack

import "github.com/perchlabs/perch/internal/domain/resource"

// Phase represents the backend-reported state of a prompt pack.
type Phase string

const (
	PhasePending Phase = "Pending"
	PhaseReady   Phase = "Ready"
	PhaseFailed  Phase = "Failed"
)

// Spec holds the desired state of a prompt pack.
type Spec struct {
	Source      string `json:"source,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Status holds the observed state reported by the operator.
type Status struct {
	Phase       Phase                `json:"phase"`
	PromptCount int                  `json:"prompt_count,omitempty"`
	Conditions  []resource.Condition `json:"conditions,omitempty"`
	Message     string               `json:"message,omitempty"`
}

// PromptPack is a versioned prompt bundle.
type PromptPack struct {
	Meta   resource.Meta `json:"metadata"`
	Spec   Spec          `json:"spec"`
	Status Status        `json:"status"`
}

// CreateRequest holds the fields needed to create a prompt pack.
type CreateRequest struct {
	Name string `json:"name"`
	Spec Spec   `json:"spec"`
}

// Content is the materialized prompt text of one pack entry.
type Content struct {
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Text    string `json:"text"`
	Version string `json:"version,omitempty"`
}
