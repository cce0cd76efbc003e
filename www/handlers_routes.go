package www

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/board"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/routing"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

type proposalResponse struct {
	JobIDs         []int64      `json:"job_ids"`
	OrderedJobs    []*store.Job `json:"ordered_jobs"`
	Skipped        []*store.Job `json:"skipped,omitempty"`
	TotalDistanceM int          `json:"total_distance_m"`
	TotalDurationS int          `json:"total_duration_s"`
	Changed        bool         `json:"changed"`
}

// apiOptimizeRoute asks the planner for the best visiting order of one
// slot. Nothing is written; the caller posts the returned job_ids to
// /api/routes/apply to commit.
func (h *Handlers) apiOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string `json:"date"`
		VehicleID int64  `json:"vehicle_id"`
		Shift     string `json:"shift"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Date == "" || req.VehicleID == 0 || req.Shift == "" {
		h.jsonError(w, "date, vehicle_id and shift are required", http.StatusBadRequest)
		return
	}

	jobs := board.ForSlot(h.engine.Dispatcher().Snapshot(), req.Date, req.VehicleID, req.Shift)
	prop, err := h.engine.Optimizer().Optimize(jobs)
	if err != nil {
		if errors.Is(err, routing.ErrTooFewStops) {
			h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	resp := proposalResponse{
		OrderedJobs:    prop.OrderedJobs,
		Skipped:        prop.Skipped,
		TotalDistanceM: prop.TotalDistanceM,
		TotalDurationS: prop.TotalDurationS,
		Changed:        prop.Changed,
	}
	for _, j := range prop.OrderedJobs {
		resp.JobIDs = append(resp.JobIDs, j.ID)
	}
	h.jsonOK(w, resp)
}

// apiApplyRoute commits a previously proposed order. A write failure
// partway through reports how many stops took the new order; the board
// stays consistent because each stop's order is written one at a time.
func (h *Handlers) apiApplyRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobIDs []int64 `json:"job_ids"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.JobIDs) < 2 {
		h.jsonError(w, "at least two job_ids are required", http.StatusBadRequest)
		return
	}

	ordered := make([]*store.Job, 0, len(req.JobIDs))
	for _, id := range req.JobIDs {
		j, err := h.engine.DB().GetJob(id)
		if err != nil {
			h.jsonError(w, "job not found", http.StatusNotFound)
			return
		}
		ordered = append(ordered, j)
	}

	err := h.engine.Optimizer().Apply(&routing.Proposal{OrderedJobs: ordered, Changed: true})
	if err != nil {
		var pae *routing.PartialApplyError
		if errors.As(err, &pae) {
			h.engine.Dispatcher().Refresh()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]any{
				"error":   pae.Error(),
				"applied": pae.Applied,
				"total":   pae.Total,
			})
			return
		}
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.engine.DB().AppendAudit("route", 0, "", "order_applied", "", "", h.getUsername(r))
	h.engine.Dispatcher().Refresh()
	h.jsonOK(w, map[string]any{"ok": true, "applied": len(ordered)})
}
