package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/OCAP2/flythrough/internal/logging"
)

// StatusFileName is the file the monitor keeps current in the run directory.
const StatusFileName = "status.json"

const defaultInterval = time.Second

// Status is a snapshot of a running job.
type Status struct {
	Time        time.Time `json:"time"`
	RunID       string    `json:"runId"`
	Environment string    `json:"environment"`
	Trials      int       `json:"trials"`
	Total       int       `json:"total"`
	Recorded    int       `json:"recorded"`
	Collided    int       `json:"collided"`
	Rejected    int       `json:"rejected"`
	Dumped      int       `json:"dumped"`
	// Pending is the number of sequences waiting in the storage write queue.
	Pending int     `json:"pending"`
	Elapsed string  `json:"elapsed"`
	Rate    float64 `json:"trialsPerSecond"`
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager *logging.SlogManager
	RunDir     string
	Interval   time.Duration
	// Snapshot returns the current status. Time is filled in by the monitor.
	Snapshot func() Status
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = defaultInterval
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Path returns the status file path.
func (s *Service) Path() string {
	return filepath.Join(s.deps.RunDir, StatusFileName)
}

// WriteStatus writes one snapshot to the status file, replacing the previous one.
func (s *Service) WriteStatus() error {
	status := s.deps.Snapshot()
	status.Time = time.Now()

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding status: %w", err)
	}
	// rename so readers never see a partial file
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("error writing status file: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("error writing status file: %w", err)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	if s.deps.Snapshot == nil {
		return fmt.Errorf("monitor: no status source")
	}
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor", "path", s.Path(), "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				// final snapshot reflects the finished run
				if err := s.WriteStatus(); err != nil {
					logger.Error("Error updating status file", "error", err)
				}
				return
			case <-ticker.C:
				if err := s.WriteStatus(); err != nil {
					logger.Error("Error updating status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for its last write.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
