// Package domain holds the persisted models of the visual-regression dashboard.
package domain

import (
	"github.com/google/uuid"
)

// Status is shared by test runs and screenshots. The dashboard UI matches on these exact strings.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusPending:
		return true
	default:
		return false
	}
}

// RollupStatus derives a run's terminal status from its failed screenshot count.
func RollupStatus(failedCount int) Status {
	if failedCount > 0 {
		return StatusFailed
	}
	return StatusPassed
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
