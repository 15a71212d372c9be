// Package arena defines the evaluation-pipeline resources: Sources supplying
// scenarios, Configs describing how to run them, and Jobs tracking execution.
package arena

import (
	"time"

	"github.com/perchlabs/perch/internal/domain/resource"
)

// SourcePhase represents the backend-reported state of an arena source.
type SourcePhase string

const (
	SourcePhasePending SourcePhase = "Pending"
	SourcePhaseReady   SourcePhase = "Ready"
	SourcePhaseFailed  SourcePhase = "Failed"
)

// Source supplies evaluation scenarios, typically from a git repository or
// object-store path.
type Source struct {
	Meta   resource.Meta `json:"metadata"`
	Spec   SourceSpec    `json:"spec"`
	Status SourceStatus  `json:"status"`
}

// SourceSpec holds the desired state of a source.
type SourceSpec struct {
	Type        string `json:"type"`
	URL         string `json:"url,omitempty"`
	Ref         string `json:"ref,omitempty"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description,omitempty"`
}

// SourceStatus holds the observed state of a source.
type SourceStatus struct {
	Phase         SourcePhase `json:"phase"`
	ScenarioCount int         `json:"scenario_count,omitempty"`
	LastSyncTime  *time.Time  `json:"last_sync_time,omitempty"`
	Message       string      `json:"message,omitempty"`
}

// Scenario is a single evaluation case from a source.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Config describes how a batch of scenarios is evaluated.
type Config struct {
	Meta resource.Meta `json:"metadata"`
	Spec ConfigSpec    `json:"spec"`
}

// ConfigSpec holds the desired state of a config.
type ConfigSpec struct {
	SourceRef   string   `json:"source_ref"`
	Agents      []string `json:"agents"`
	Judge       string   `json:"judge,omitempty"`
	Parallelism int      `json:"parallelism,omitempty"`
	Timeout     string   `json:"timeout,omitempty"`
}

// JobPhase represents the state machine of an arena job.
type JobPhase string

const (
	JobPhasePending   JobPhase = "Pending"
	JobPhaseRunning   JobPhase = "Running"
	JobPhaseCompleted JobPhase = "Completed"
	JobPhaseFailed    JobPhase = "Failed"
	JobPhaseCancelled JobPhase = "Cancelled"
)

// Job is one execution of a config against its source's scenarios.
type Job struct {
	Meta   resource.Meta `json:"metadata"`
	Spec   JobSpec       `json:"spec"`
	Status JobStatus     `json:"status"`
}

// JobSpec holds the desired state of a job.
type JobSpec struct {
	ConfigRef string `json:"config_ref"`
	Type      string `json:"type,omitempty"`
}

// JobStatus tracks job progress.
type JobStatus struct {
	Phase          JobPhase   `json:"phase"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	FailedTasks    int        `json:"failed_tasks"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	CompletionTime *time.Time `json:"completion_time,omitempty"`
	Message        string     `json:"message,omitempty"`
}

// Terminal reports whether the job phase can no longer change.
func (p JobPhase) Terminal() bool {
	switch p {
	case JobPhaseCompleted, JobPhaseFailed, JobPhaseCancelled:
		return true
	}
	return false
}

// JobResult is the scored outcome of one scenario within a job.
type JobResult struct {
	ScenarioID string  `json:"scenario_id"`
	Agent      string  `json:"agent"`
	Score      float64 `json:"score"`
	Passed     bool    `json:"passed"`
	Detail     string  `json:"detail,omitempty"`
}

// JobMetrics aggregates scores across a finished or running job.
type JobMetrics struct {
	MeanScore    float64            `json:"mean_score"`
	PassRate     float64            `json:"pass_rate"`
	ScoresByTag  map[string]float64 `json:"scores_by_tag,omitempty"`
	TotalCostUSD float64            `json:"total_cost_usd,omitempty"`
}

// CreateSourceRequest holds the fields needed to create a source.
type CreateSourceRequest struct {
	Name string     `json:"name"`
	Spec SourceSpec `json:"spec"`
}

// CreateConfigRequest holds the fields needed to create a config.
type CreateConfigRequest struct {
	Name string     `json:"name"`
	Spec ConfigSpec `json:"spec"`
}

// CreateJobRequest holds the fields needed to start a job.
type CreateJobRequest struct {
	Name string  `json:"name"`
	Spec JobSpec `json:"spec"`
}
