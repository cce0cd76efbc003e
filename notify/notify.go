// Package notify decides which customers are owed an outbound message and
// sends them in one batch through the messaging gateway. The dedup key is the
// (scheduled date, shift) pair: editing either makes the job owed again, with
// no explicit reset step.
package notify

import (
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// Owed reports whether a job's last confirmed notification no longer matches
// its current (date, shift).
func Owed(j *store.Job) bool {
	if j.Status == store.StatusDelivered || j.Status == store.StatusCancelled {
		return false
	}
	return j.NotifiedDate != j.ScheduledDate || j.NotifiedShift != j.Shift
}

// PendingFor partitions a job set into owed and already-sent.
func PendingFor(jobs []*store.Job) (owed, alreadySent []*store.Job) {
	for _, j := range jobs {
		if Owed(j) {
			owed = append(owed, j)
		} else {
			alreadySent = append(alreadySent, j)
		}
	}
	return owed, alreadySent
}

// GroupByVehicle buckets owed jobs per vehicle for the dispatch report.
// Jobs without a vehicle land under key 0.
func GroupByVehicle(jobs []*store.Job) map[int64][]*store.Job {
	out := make(map[int64][]*store.Job)
	for _, j := range jobs {
		var vid int64
		if j.VehicleID != nil {
			vid = *j.VehicleID
		}
		out[vid] = append(out[vid], j)
	}
	return out
}
