package livetrack

import "time"

// VehicleLive is what the board shows for one vehicle: identity, the
// latest position and how far along its route it is.
type VehicleLive struct {
	VehicleID   int64     `json:"vehicle_id"`
	Plate       string    `json:"plate"`
	DriverName  string    `json:"driver_name"`
	RouteStatus string    `json:"route_status"`
	ActiveShift string    `json:"active_shift"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	LastUpdate  time.Time `json:"last_update"`
	StopsTotal  int       `json:"stops_total"`
	StopsDone   int       `json:"stops_done"`
}
