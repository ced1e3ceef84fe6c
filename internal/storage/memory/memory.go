// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/OCAP2/flythrough/internal/config"
	"github.com/OCAP2/flythrough/internal/queue"
	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"
)

// ErrRunNotStarted is returned by AppendSequence before StartRun.
var ErrRunNotStarted = errors.New("run not started")

// Backend keeps sequences in memory and exports a JSON label manifest on Close.
type Backend struct {
	cfg config.MemoryConfig
	dir string

	run       *core.Run
	profile   scene.Profile
	sequences *queue.Queue[core.Sequence]

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend writing its manifest into dir.
func New(cfg config.MemoryConfig, dir string) *Backend {
	return &Backend{
		cfg:       cfg,
		dir:       dir,
		sequences: queue.New[core.Sequence](),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// StartRun begins recording a new run
func (b *Backend) StartRun(run *core.Run, profile scene.Profile) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := *run
	b.run = &r
	b.profile = profile
	return nil
}

// AppendSequence stores a copy of seq.
func (b *Backend) AppendSequence(seq *core.Sequence) error {
	b.mu.RLock()
	started := b.run != nil
	b.mu.RUnlock()
	if !started {
		return ErrRunNotStarted
	}
	b.sequences.Push(*seq)
	return nil
}

// Written returns the number of sequences held.
func (b *Backend) Written() int {
	return b.sequences.Len()
}

// Close writes the manifest. Nothing is written if no run was started.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return nil
	}
	return b.exportJSON()
}

// GetExportedFilePath returns the path of the last written manifest.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
