package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OCAP2/flythrough/internal/config"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrialPoint_LineProtocol(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	p := TrialPoint("blocks", "recorded", 40, 2.5, 1500*time.Millisecond, ts)

	line := influxdb2_write.PointToLineProtocol(p, time.Second)
	assert.True(t, strings.HasPrefix(line, "trial,env=blocks,outcome=recorded "), line)
	assert.Contains(t, line, "steps=40i")
	assert.Contains(t, line, "speed=2.5")
	assert.Contains(t, line, "duration_ms=1500i")
	assert.Contains(t, line, " 1700000000")
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{Enabled: false}, zerolog.Nop(), "")
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
	assert.NoError(t, m.Close())
}

func TestWritePoint_NotConnected(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	err := m.WritePoint(TrialPoint("trap", "collided", 3, 1, time.Second, time.Now()))
	assert.Error(t, err)
}

func TestConnect_UnreachableFallsBackToBackup(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     "1",
		Org:      "flythrough",
		Bucket:   "trials",
	}, zerolog.Nop(), backup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)

	require.NoError(t, m.WritePoint(TrialPoint("nh", "rejected", 0, 0, 0, time.Unix(1, 0))))
	require.NoError(t, m.WritePoint(TrialPoint("nh", "recorded", 40, 1, time.Second, time.Unix(2, 0))))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "trial,env=nh,outcome=rejected"))
	assert.True(t, strings.HasPrefix(lines[1], "trial,env=nh,outcome=recorded"))
}
