// Package provider defines the Provider resource: a configured LLM backend
// (API endpoint plus credential reference) shared by agent runtimes.
package provider

import "github.com/perchlabs/perch/internal/domain/resource"

// Phase represents the backend-reported state of a provider.
type Phase string

const (
	PhasePending Phase = "Pending"
	PhaseReady   Phase = "Ready"
	PhaseFailed  Phase = "Failed"
)

// Spec holds the desired state of a provider.
type Spec struct {
	Type      string   `json:"type"`
	BaseURL   string   `json:"base_url,omitempty"`
	SecretRef string   `json:"secret_ref,omitempty"`
	Models    []string `json:"models,omitempty"`
}

// Status holds the observed state reported by the operator.
type Status struct {
	Phase      Phase                `json:"phase"`
	Conditions []resource.Condition `json:"conditions,omitempty"`
	Message    string               `json:"message,omitempty"`
}

// Provider is a configured LLM backend.
type Provider struct {
	Meta   resource.Meta `json:"metadata"`
	Spec   Spec          `json:"spec"`
	Status Status        `json:"status"`
}

// CreateRequest holds the fields needed to create a provider.
type CreateRequest struct {
	Name string `json:"name"`
	Spec Spec   `json:"spec"`
}
