// Package secret defines credential metadata. Secret values are never
// surfaced through this layer; only key names travel.
package secret

import "time"

// Meta describes a stored secret without exposing its values.
type Meta struct {
	Name      string    `json:"name"`
	Namespace string    `json:"namespace"`
	Keys      []string  `json:"keys"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// CreateRequest holds the fields needed to store a secret. Values are
// write-only: they are sent to the backend and never read back.
type CreateRequest struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Values    map[string]string `json:"values"`
}
