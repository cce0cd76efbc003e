package store

import (
	"fmt"
	"time"
)

// Vehicle route statuses.
const (
	RouteIdle      = "idle"
	RouteInTransit = "in_transit"
)

type Vehicle struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Plate       string     `json:"plate"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
	RouteStatus string     `json:"route_status"`
	DriverName  string     `json:"driver_name"`
	ActiveShift string     `json:"active_shift"`
	Enabled     bool       `json:"enabled"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

const vehicleSelectCols = `id, name, plate, latitude, longitude, last_update, route_status, driver_name, active_shift, enabled, created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (*Vehicle, error) {
	var v Vehicle
	var lastUpdate, createdAt, updatedAt any
	var enabled int
	err := row.Scan(&v.ID, &v.Name, &v.Plate, &v.Latitude, &v.Longitude, &lastUpdate,
		&v.RouteStatus, &v.DriverName, &v.ActiveShift, &enabled, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	v.Enabled = enabled != 0
	v.LastUpdate = parseTimePtr(lastUpdate)
	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)
	return &v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (db *DB) CreateVehicle(v *Vehicle) error {
	if v.RouteStatus == "" {
		v.RouteStatus = RouteIdle
	}
	result, err := db.Exec(db.Q(`INSERT INTO vehicles (name, plate, route_status, driver_name, active_shift, enabled) VALUES (?, ?, ?, ?, ?, ?)`),
		v.Name, v.Plate, v.RouteStatus, v.DriverName, v.ActiveShift, boolToInt(v.Enabled))
	if err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create vehicle last id: %w", err)
	}
	v.ID = id
	return nil
}

func (db *DB) GetVehicle(id int64) (*Vehicle, error) {
	row := db.QueryRow(db.Q(`SELECT `+vehicleSelectCols+` FROM vehicles WHERE id=?`), id)
	return scanVehicle(row)
}

func (db *DB) GetVehicleByPlate(plate string) (*Vehicle, error) {
	row := db.QueryRow(db.Q(`SELECT `+vehicleSelectCols+` FROM vehicles WHERE plate=?`), plate)
	return scanVehicle(row)
}

func (db *DB) ListVehicles() ([]*Vehicle, error) {
	rows, err := db.Query(`SELECT ` + vehicleSelectCols + ` FROM vehicles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vehicles []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (db *DB) UpdateVehicle(v *Vehicle) error {
	_, err := db.Exec(db.Q(`UPDATE vehicles SET name=?, plate=?, enabled=?, updated_at=datetime('now','localtime') WHERE id=?`),
		v.Name, v.Plate, boolToInt(v.Enabled), v.ID)
	return err
}

// UpdateVehiclePosition records a live GPS fix.
func (db *DB) UpdateVehiclePosition(id int64, lat, lon float64) error {
	_, err := db.Exec(db.Q(`UPDATE vehicles SET latitude=?, longitude=?, last_update=datetime('now','localtime'), updated_at=datetime('now','localtime') WHERE id=?`),
		lat, lon, id)
	return err
}

// SetVehicleRoute flips a vehicle between idle and in_transit, together with
// the active driver and shift.
func (db *DB) SetVehicleRoute(id int64, routeStatus, driverName, activeShift string) error {
	_, err := db.Exec(db.Q(`UPDATE vehicles SET route_status=?, driver_name=?, active_shift=?, updated_at=datetime('now','localtime') WHERE id=?`),
		routeStatus, driverName, activeShift, id)
	return err
}

func (db *DB) DeleteVehicle(id int64) error {
	_, err := db.Exec(db.Q(`DELETE FROM vehicles WHERE id=?`), id)
	return err
}
