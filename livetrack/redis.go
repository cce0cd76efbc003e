package livetrack

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func liveKey(vehicleID int64) string {
	return fmt.Sprintf("entregahub:vehicle:%d:live", vehicleID)
}

const allVehiclesKey = "entregahub:vehicles"

func (r *RedisStore) SetLive(ctx context.Context, live *VehicleLive) error {
	data, err := json.Marshal(live)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, liveKey(live.VehicleID), data, 0)
	pipe.SAdd(ctx, allVehiclesKey, live.VehicleID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) GetLive(ctx context.Context, vehicleID int64) (*VehicleLive, error) {
	data, err := r.client.Get(ctx, liveKey(vehicleID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var live VehicleLive
	return &live, json.Unmarshal(data, &live)
}

func (r *RedisStore) GetAllVehicleIDs(ctx context.Context) ([]int64, error) {
	members, err := r.client.SMembers(ctx, allVehiclesKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *RedisStore) RemoveVehicle(ctx context.Context, vehicleID int64) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, liveKey(vehicleID))
	pipe.SRem(ctx, allVehiclesKey, vehicleID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) FlushAll(ctx context.Context) error {
	ids, err := r.GetAllVehicleIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		r.RemoveVehicle(ctx, id)
	}
	return r.client.Del(ctx, allVehiclesKey).Err()
}
