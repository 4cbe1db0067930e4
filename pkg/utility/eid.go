package utility

import (
	"sync"

	"github.com/google/uuid"
)

// ExecutionID identifies one simulation run. Every event produced during the
// run carries it, so mixed log streams can be split run-by-run.
type ExecutionID = uuid.UUID

var (
	executionID     ExecutionID
	executionIDOnce sync.Once
	executionIDMu   sync.RWMutex
)

func GetExecutionID() ExecutionID {
	executionIDOnce.Do(func() {
		executionID = uuid.Must(uuid.NewV7())
	})

	executionIDMu.RLock()
	defer executionIDMu.RUnlock()
	return executionID
}

// ResetExecutionID starts a fresh run identity. Used between independent
// simulations hosted in the same process.
func ResetExecutionID() ExecutionID {
	executionIDMu.Lock()
	defer executionIDMu.Unlock()

	executionID = uuid.Must(uuid.NewV7())
	return executionID
}
