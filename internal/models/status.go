// Package models contains domain types for route cards.
// Persistence lives in internal/adapters; pure rules live in internal/core.
package models

// Status is the 4-valued execution status shared by operations and cards.
type Status string

// Status constants
const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPaused, StatusDone:
		return true
	}
	return false
}

// ProcessState is the 5-valued projection used for badges and filters.
type ProcessState string

// ProcessState constants
const (
	ProcessNotStarted ProcessState = "NOT_STARTED"
	ProcessInProgress ProcessState = "IN_PROGRESS"
	ProcessPaused     ProcessState = "PAUSED"
	ProcessMixed      ProcessState = "MIXED"
	ProcessDone       ProcessState = "DONE"
)
