package livetrack

import (
	"context"
	"log"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// Manager provides write-through live vehicle state: SQL first, then Redis.
// Redis holding a stale copy is tolerable, SQL missing a write is not.
type Manager struct {
	db    *store.DB
	redis *RedisStore
}

func NewManager(db *store.DB, redis *RedisStore) *Manager {
	return &Manager{db: db, redis: redis}
}

// RecordPosition stores a GPS fix in SQL and refreshes the Redis copy.
func (m *Manager) RecordPosition(vehicleID int64, lat, lon float64) error {
	if err := m.db.UpdateVehiclePosition(vehicleID, lat, lon); err != nil {
		return err
	}
	m.refreshVehicleRedis(vehicleID)
	return nil
}

// RouteChanged refreshes the Redis copy after a vehicle started or
// finished a route.
func (m *Manager) RouteChanged(vehicleID int64) {
	m.refreshVehicleRedis(vehicleID)
}

// GetLive reads one vehicle's live state from Redis, falls back to SQL.
func (m *Manager) GetLive(vehicleID int64) (*VehicleLive, error) {
	ctx := context.Background()

	if m.redis != nil {
		live, err := m.redis.GetLive(ctx, vehicleID)
		if err == nil && live != nil {
			return live, nil
		}
	}
	return m.getLiveFromSQL(vehicleID)
}

// GetAllLive reads every vehicle's live state, preferring Redis.
func (m *Manager) GetAllLive() ([]*VehicleLive, error) {
	ctx := context.Background()

	if m.redis != nil {
		ids, err := m.redis.GetAllVehicleIDs(ctx)
		if err == nil && len(ids) > 0 {
			out := make([]*VehicleLive, 0, len(ids))
			for _, id := range ids {
				live, err := m.GetLive(id)
				if err != nil {
					continue
				}
				out = append(out, live)
			}
			return out, nil
		}
	}

	vehicles, err := m.db.ListVehicles()
	if err != nil {
		return nil, err
	}
	out := make([]*VehicleLive, 0, len(vehicles))
	for _, v := range vehicles {
		live, err := m.getLiveFromSQL(v.ID)
		if err != nil {
			continue
		}
		out = append(out, live)
	}
	return out, nil
}

// SyncRedisFromSQL rebuilds all Redis state from SQL. Called on startup.
func (m *Manager) SyncRedisFromSQL() error {
	if m.redis == nil {
		return nil
	}
	if err := m.redis.FlushAll(context.Background()); err != nil {
		return err
	}
	vehicles, err := m.db.ListVehicles()
	if err != nil {
		return err
	}
	for _, v := range vehicles {
		m.refreshVehicleRedis(v.ID)
	}
	log.Printf("[livetrack] synced %d vehicles to redis", len(vehicles))
	return nil
}

func (m *Manager) refreshVehicleRedis(vehicleID int64) {
	if m.redis == nil {
		return
	}
	live, err := m.getLiveFromSQL(vehicleID)
	if err != nil {
		log.Printf("[livetrack] refresh redis for vehicle %d: %v", vehicleID, err)
		return
	}
	if err := m.redis.SetLive(context.Background(), live); err != nil {
		log.Printf("[livetrack] redis set for vehicle %d: %v", vehicleID, err)
	}
}

func (m *Manager) getLiveFromSQL(vehicleID int64) (*VehicleLive, error) {
	v, err := m.db.GetVehicle(vehicleID)
	if err != nil {
		return nil, err
	}
	live := &VehicleLive{
		VehicleID:   v.ID,
		Plate:       v.Plate,
		DriverName:  v.DriverName,
		RouteStatus: v.RouteStatus,
		ActiveShift: v.ActiveShift,
		Lat:         v.Latitude,
		Lon:         v.Longitude,
	}
	if v.LastUpdate != nil {
		live.LastUpdate = *v.LastUpdate
	}

	jobs, err := m.db.ListJobs("")
	if err != nil {
		return live, nil
	}
	for _, j := range jobs {
		if j.VehicleID == nil || *j.VehicleID != v.ID {
			continue
		}
		switch j.Status {
		case store.StatusScheduled:
			live.StopsTotal++
		case store.StatusDelivered:
			live.StopsTotal++
			live.StopsDone++
		}
	}
	return live, nil
}
