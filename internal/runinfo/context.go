package runinfo

import (
	"log/slog"
	"sync"
)

// Context holds the state of the run in progress, shared with the log handlers.
type Context struct {
	mu          sync.RWMutex
	runID       string
	environment string
	trial       int
}

// NewContext creates a new Context with no run loaded.
func NewContext() *Context {
	return &Context{
		environment: "none",
		trial:       -1,
	}
}

// SetRun sets the run identifier and environment.
func (c *Context) SetRun(runID, environment string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runID = runID
	c.environment = environment
}

// SetTrial records the trial being executed.
func (c *Context) SetTrial(trial int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trial = trial
}

// Environment returns the current environment name.
func (c *Context) Environment() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.environment
}

// Trial returns the trial being executed, or -1 outside the trial loop.
func (c *Context) Trial() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trial
}

// Attrs returns the log attributes for the current state. It has the signature
// of logging.ContextProvider.
func (c *Context) Attrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	attrs := []slog.Attr{slog.String("env", c.environment)}
	if c.runID != "" {
		attrs = append(attrs, slog.String("runId", c.runID))
	}
	if c.trial >= 0 {
		attrs = append(attrs, slog.Int("trial", c.trial))
	}
	return attrs
}
