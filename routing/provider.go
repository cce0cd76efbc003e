// Package routing turns a vehicle's unordered stops into a driving
// sequence through an external route planner.
package routing

// Waypoint is one address handed to the planner. Lat/Lon are optional,
// the planner geocodes from Address when they are zero.
type Waypoint struct {
	Label   string  `json:"label"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// Leg is the drive between two consecutive stops of a plan.
type Leg struct {
	DistanceM int `json:"distance_m"`
	DurationS int `json:"duration_s"`
}

// Plan is the planner's answer. Order holds indexes into the stops
// slice that was sent, best sequence first. Legs, when present, has one
// entry per hop starting from the origin.
type Plan struct {
	Order          []int `json:"order"`
	TotalDistanceM int   `json:"total_distance_m"`
	TotalDurationS int   `json:"total_duration_s"`
	Legs           []Leg `json:"legs,omitempty"`
}

// Provider is the route planning backend.
type Provider interface {
	OptimizeWaypoints(origin Waypoint, stops []Waypoint) (*Plan, error)
}
