// internal/storage/storage.go
package storage

import (
	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"
)

// Backend is the interface all output sinks must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// StartRun records the run header. It must be called before AppendSequence.
	StartRun(run *core.Run, profile scene.Profile) error

	// AppendSequence adds one recorded sequence. Sequences are kept in call order.
	AppendSequence(seq *core.Sequence) error
}

// Counter is implemented by backends that report how many sequences they persisted.
type Counter interface {
	Written() int
}
