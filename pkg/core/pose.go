// pkg/core/pose.go
package core

// Position3D is a point in the simulator's local NED frame, in metres.
// Z grows downwards.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Orientation holds Tait-Bryan angles in radians.
type Orientation struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
}

// Pose is the camera platform state for one simulated time step.
type Pose struct {
	Position    Position3D  `json:"position"`
	Orientation Orientation `json:"orientation"`
}
