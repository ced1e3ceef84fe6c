package geo

import (
	"fmt"

	"github.com/OCAP2/flythrough/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Path builds a 3D line string through the positions of poses, with Z pointing up.
func Path(poses []core.Pose) (geom.LineString, error) {
	if len(poses) < 2 {
		return geom.LineString{}, fmt.Errorf("path must have at least 2 points, got %d", len(poses))
	}

	flatCoords := make([]float64, 0, len(poses)*3)
	for _, p := range poses {
		flatCoords = append(flatCoords, p.Position.X, p.Position.Y, -p.Position.Z)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXYZ)
	return geom.NewLineString(seq), nil
}
