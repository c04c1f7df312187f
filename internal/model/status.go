package model

import "time"

// RunState is the coarse pipeline state recorded on the status document.
type RunState string

const (
	RunStateRunning RunState = "running"
	RunStateIdle    RunState = "idle"
)

// SyncStatus is the single status document tracked by the pipeline.
// LastUpdateDate is the source watermark: the publication date of the
// most recent directory release that has been processed.
type SyncStatus struct {
	State          RunState  `json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
	LastUpdateDate time.Time `json:"last_update_date"`
}
