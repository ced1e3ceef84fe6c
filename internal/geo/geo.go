package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/OCAP2/flythrough/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO TAGS
// Simulator positions are local NED metres (x north, y east, z down) around the
// level's origin. To give recorded sequences a map position the origin is pinned
// to a WGS84 coordinate and offsets are applied in Web Mercator (EPSG:3857),
// where one unit is one metre scaled by 1/cos(latitude).

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Origin is the WGS84 coordinate of the simulator's local origin.
type Origin struct {
	Lon float64
	Lat float64
}

// Valid reports whether the origin lies inside the Web Mercator domain.
func (o Origin) Valid() bool {
	return o.Lon >= -180 && o.Lon <= 180 && o.Lat > -85.06 && o.Lat < 85.06
}

// ParseOrigin parses a "long,lat" string into an Origin.
func ParseOrigin(coords string) (Origin, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return Origin{}, ErrInvalidCoordinates
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return Origin{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return Origin{}, ErrInvalidCoordinates
	}
	o := Origin{Lon: long, Lat: lat}
	if !o.Valid() {
		return Origin{}, ErrInvalidCoordinates
	}
	return o, nil
}

// Geotag returns the WGS84 point (lon, lat, altitude above the datum) of a local position.
func Geotag(origin Origin, p core.Position3D) (geom.Point, error) {
	if !origin.Valid() {
		return geom.NewEmptyPoint(geom.DimXYZ), ErrInvalidCoordinates
	}
	epsg := wgs84.EPSG()
	x0, y0, _ := epsg.Transform(4326, 3857)(origin.Lon, origin.Lat, 0)

	scale := 1 / math.Cos(origin.Lat*math.Pi/180)
	x := x0 + p.Y*scale
	y := y0 + p.X*scale

	lon, lat, _ := epsg.Transform(3857, 4326)(x, y, 0)
	point := geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: lon, Y: lat},
			Z:    -p.Z,
			Type: geom.DimXYZ,
		},
	)
	return point, nil
}
