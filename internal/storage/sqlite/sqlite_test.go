package sqlitestorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/flythrough/internal/database"
	"github.com/OCAP2/flythrough/internal/model"
	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_WritesFileInRunDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.db")

	b, err := New(Config{Path: path, BatchSize: 4}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	assert.Equal(t, path, b.Path())

	profile, err := scene.BoundsFor("trap")
	require.NoError(t, err)
	run := &core.Run{ID: "0b5b8a56-3c55-4c1e-9b7d-2f1f6a8c0d11", Environment: "trap", StartTime: time.Now()}
	require.NoError(t, b.StartRun(run, profile))

	frame := core.NewFrame(2, 2)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.AppendSequence(&core.Sequence{
			Index:  i,
			Labels: core.Labels{X: float64(i)},
			Video:  core.Clip{frame, frame},
			Short:  core.Clip{frame},
			Depth:  core.DepthMap{Width: 2, Height: 2, Data: []float64{1, 2, 3, 4}},
		}))
	}
	require.NoError(t, b.Close())
	assert.FileExists(t, path)

	// reopen the file and check what landed
	db, err := database.GetSqliteDB(path)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var labels []model.Label
	require.NoError(t, db.Order("id").Find(&labels).Error)
	require.Len(t, labels, 3)
	assert.Equal(t, 2.0, labels[2].X)

	var depth model.Depth
	require.NoError(t, db.Where("sequence_index = ?", 1).First(&depth).Error)
	assert.Equal(t, 2, depth.Width)
	assert.Len(t, depth.Data, 4*8)

	var row model.Run
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, 3, row.Sequences)
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(Config{Path: filepath.Join(t.TempDir(), "missing", "dir", "output.db")}, nil, nil)
	assert.Error(t, err)
}
