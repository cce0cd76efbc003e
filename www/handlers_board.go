package www

import (
	"net/http"
	"strconv"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/board"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/notify"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// filterSlot keeps the jobs scheduled on one date and shift across all
// vehicles, the unit the dispatcher confirms notifications for.
func filterSlot(jobs []*store.Job, date, shift string) []*store.Job {
	var out []*store.Job
	for _, j := range jobs {
		if j.ScheduledDate == date && j.Shift == shift {
			out = append(out, j)
		}
	}
	return out
}

func (h *Handlers) apiBoardSlots(w http.ResponseWriter, r *http.Request) {
	jobs := h.engine.Dispatcher().Snapshot()
	h.jsonOK(w, board.Occupancy(jobs))
}

func (h *Handlers) apiSlotJobs(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	shift := r.URL.Query().Get("shift")
	vehicleID, err := strconv.ParseInt(r.URL.Query().Get("vehicle_id"), 10, 64)
	if err != nil || date == "" || shift == "" {
		h.jsonError(w, "date, vehicle_id and shift are required", http.StatusBadRequest)
		return
	}
	jobs := h.engine.Dispatcher().Snapshot()
	h.jsonOK(w, board.ForSlot(jobs, date, vehicleID, shift))
}

func (h *Handlers) apiTriage(w http.ResponseWriter, r *http.Request) {
	jobs := h.engine.Dispatcher().Snapshot()
	h.jsonOK(w, board.Triage(jobs))
}

func (h *Handlers) apiHeld(w http.ResponseWriter, r *http.Request) {
	jobs := h.engine.Dispatcher().Snapshot()
	h.jsonOK(w, board.Held(jobs))
}

func (h *Handlers) apiBulkReschedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Date == "" {
		h.jsonError(w, "date is required", http.StatusBadRequest)
		return
	}
	moved, notified, err := h.engine.Dispatcher().BulkReschedule(req.Date)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{"moved": moved, "notified": notified})
}

// apiPendingNotifications splits a slot's jobs into owed and
// already-sent, the same view the dispatcher sees before confirming.
func (h *Handlers) apiPendingNotifications(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	shift := r.URL.Query().Get("shift")
	if date == "" || shift == "" {
		h.jsonError(w, "date and shift are required", http.StatusBadRequest)
		return
	}
	jobs := filterSlot(h.engine.Dispatcher().Snapshot(), date, shift)
	owed, alreadySent := notify.PendingFor(jobs)
	h.jsonOK(w, map[string]any{"owed": owed, "already_sent": alreadySent})
}

func (h *Handlers) apiSendNotifications(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date  string `json:"date"`
		Shift string `json:"shift"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Date == "" || req.Shift == "" {
		h.jsonError(w, "date and shift are required", http.StatusBadRequest)
		return
	}
	jobs := filterSlot(h.engine.Dispatcher().Snapshot(), req.Date, req.Shift)
	owed, alreadySent := notify.PendingFor(jobs)
	sent, err := h.engine.Notifier().SendOwed(owed)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.jsonOK(w, map[string]any{"sent": sent, "already_sent": len(alreadySent)})
}
