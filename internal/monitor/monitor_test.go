package monitor

import (
	"encoding/json"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readStatus(t *testing.T, path string) Status {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	return st
}

func TestWriteStatus(t *testing.T) {
	s := NewService(Dependencies{
		RunDir: t.TempDir(),
		Snapshot: func() Status {
			return Status{RunID: "abc", Environment: "blocks", Trials: 3, Total: 10, Recorded: 2, Rejected: 1}
		},
	})

	require.NoError(t, s.WriteStatus())
	st := readStatus(t, s.Path())
	assert.Equal(t, "abc", st.RunID)
	assert.Equal(t, 3, st.Trials)
	assert.Equal(t, 2, st.Recorded)
	assert.False(t, st.Time.IsZero())
	assert.NoFileExists(t, s.Path()+".tmp")
}

func TestWriteStatus_MissingDir(t *testing.T) {
	s := NewService(Dependencies{
		RunDir:   "/nonexistent/run",
		Snapshot: func() Status { return Status{} },
	})
	assert.Error(t, s.WriteStatus())
}

func TestStart_NoSource(t *testing.T) {
	s := NewService(Dependencies{RunDir: t.TempDir()})
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestStartStop(t *testing.T) {
	var trials atomic.Int64
	s := NewService(Dependencies{
		RunDir:   t.TempDir(),
		Interval: 10 * time.Millisecond,
		Snapshot: func() Status { return Status{Trials: int(trials.Load())} },
	})

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	trials.Store(4)
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(s.Path())
		if err != nil {
			return false
		}
		var st Status
		return json.Unmarshal(data, &st) == nil && st.Trials == 4
	}, time.Second, 10*time.Millisecond)

	trials.Store(7)
	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Equal(t, 7, readStatus(t, s.Path()).Trials)

	// stopping twice is harmless
	s.Stop()
}
