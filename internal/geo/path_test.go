package geo

import (
	"strings"
	"testing"

	"github.com/OCAP2/flythrough/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_Valid(t *testing.T) {
	poses := []core.Pose{
		{Position: core.Position3D{X: 0, Y: 0, Z: -2}},
		{Position: core.Position3D{X: 3, Y: 4, Z: -2}},
		{Position: core.Position3D{X: 3, Y: 4, Z: -5}},
	}
	ls, err := Path(poses)
	require.NoError(t, err)

	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())
	end := seq.Get(2)
	assert.Equal(t, 3.0, end.X)
	assert.Equal(t, 4.0, end.Y)
	assert.Equal(t, 5.0, end.Z)

	wkt := ls.AsText()
	assert.True(t, strings.HasPrefix(wkt, "LINESTRING Z"), wkt)
}

func TestPath_TooFewPoints(t *testing.T) {
	_, err := Path([]core.Pose{{}})
	require.Error(t, err)
	_, err = Path(nil)
	require.Error(t, err)
}
