// Package board projects a job list onto the weekly scheduling board. Every
// query is a pure recomputation over the authoritative job list — the board
// holds no state of its own, so it can never drift from the store.
package board

import (
	"sort"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// ForSlot returns the jobs assigned to one (date, vehicle, shift) slot,
// ordered by route order ascending. Jobs without a route order come last,
// in their original list order.
func ForSlot(jobs []*store.Job, date string, vehicleID int64, shift string) []*store.Job {
	var out []*store.Job
	for _, j := range jobs {
		if j.ScheduledDate != date || j.Shift != shift {
			continue
		}
		if j.VehicleID == nil || *j.VehicleID != vehicleID {
			continue
		}
		out = append(out, j)
	}
	sort.SliceStable(out, func(a, b int) bool {
		oa, ob := out[a].RouteOrder, out[b].RouteOrder
		if oa == nil {
			return false
		}
		if ob == nil {
			return true
		}
		return *oa < *ob
	})
	return out
}

// Triage returns the jobs with no date or no vehicle yet, excluding held and
// closed jobs.
func Triage(jobs []*store.Job) []*store.Job {
	var out []*store.Job
	for _, j := range jobs {
		if j.Status == store.StatusAwaitingRelease || terminal(j.Status) {
			continue
		}
		if j.ScheduledDate == "" || j.VehicleID == nil {
			out = append(out, j)
		}
	}
	return out
}

// Held returns the jobs parked in awaiting_release.
func Held(jobs []*store.Job) []*store.Job {
	var out []*store.Job
	for _, j := range jobs {
		if j.Status == store.StatusAwaitingRelease {
			out = append(out, j)
		}
	}
	return out
}

// SlotCount is one cell of the weekly occupancy summary.
type SlotCount struct {
	Date      string `json:"date"`
	VehicleID int64  `json:"vehicle_id"`
	Shift     string `json:"shift"`
	Count     int    `json:"count"`
}

// Occupancy counts scheduled jobs per (date, vehicle, shift), ordered by
// date, then vehicle, then shift for a stable board rendering.
func Occupancy(jobs []*store.Job) []SlotCount {
	type key struct {
		date      string
		vehicleID int64
		shift     string
	}
	counts := make(map[key]int)
	for _, j := range jobs {
		if j.Status != store.StatusScheduled || j.VehicleID == nil {
			continue
		}
		counts[key{j.ScheduledDate, *j.VehicleID, j.Shift}]++
	}
	out := make([]SlotCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, SlotCount{Date: k.date, VehicleID: k.vehicleID, Shift: k.shift, Count: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Date != out[b].Date {
			return out[a].Date < out[b].Date
		}
		if out[a].VehicleID != out[b].VehicleID {
			return out[a].VehicleID < out[b].VehicleID
		}
		return shiftRank(out[a].Shift) < shiftRank(out[b].Shift)
	})
	return out
}

func shiftRank(s string) int {
	switch s {
	case store.ShiftMorning:
		return 0
	case store.ShiftAfternoon:
		return 1
	case store.ShiftCommercial:
		return 2
	}
	return 3
}

func terminal(status string) bool {
	return status == store.StatusDelivered || status == store.StatusCancelled
}
