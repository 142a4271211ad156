package model

import "time"

// RunStatus tracks a discovery run's lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one persisted discovery request with its eventual result.
type Run struct {
	ID        string           `json:"id"`
	Query     ChemicalQuery    `json:"query"`
	Status    RunStatus        `json:"status"`
	Result    *DiscoveryResult `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
