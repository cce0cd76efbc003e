package www

import (
	"net/http"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

func (h *Handlers) apiListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.engine.DB().ListVehicles()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, vehicles)
}

func (h *Handlers) apiVehiclesLive(w http.ResponseWriter, r *http.Request) {
	live, err := h.engine.Live().GetAllLive()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, live)
}

func (h *Handlers) apiCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Plate      string `json:"plate"`
		DriverName string `json:"driver_name"`
		Enabled    *bool  `json:"enabled"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Plate == "" {
		h.jsonError(w, "plate is required", http.StatusBadRequest)
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	v := &store.Vehicle{
		Name:       req.Name,
		Plate:      req.Plate,
		DriverName: req.DriverName,
		Enabled:    enabled,
	}
	if err := h.engine.DB().CreateVehicle(v); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.DB().AppendAudit("vehicle", v.ID, v.Plate, "created", "", "", h.getUsername(r))
	h.jsonOK(w, v)
}

func (h *Handlers) apiUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	v, err := h.engine.DB().GetVehicle(id)
	if err != nil {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	var req struct {
		Name    *string `json:"name"`
		Plate   *string `json:"plate"`
		Enabled *bool   `json:"enabled"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Plate != nil {
		v.Plate = *req.Plate
	}
	if req.Enabled != nil {
		v.Enabled = *req.Enabled
	}
	if err := h.engine.DB().UpdateVehicle(v); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.DB().AppendAudit("vehicle", v.ID, v.Plate, "updated", "", "", h.getUsername(r))
	h.jsonOK(w, v)
}

func (h *Handlers) apiDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	plate := ""
	if v, err := h.engine.DB().GetVehicle(id); err == nil {
		plate = v.Plate
	}
	if err := h.engine.DB().DeleteVehicle(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.DB().AppendAudit("vehicle", id, plate, "deleted", "", "", h.getUsername(r))
	h.jsonOK(w, map[string]any{"ok": true})
}

func (h *Handlers) apiStartRoute(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		DriverName string `json:"driver_name"`
		Shift      string `json:"shift"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.engine.Tracker().StartRoute(id, req.DriverName, req.Shift); err != nil {
		h.moveError(w, err)
		return
	}
	h.jsonOK(w, map[string]any{"ok": true})
}

func (h *Handlers) apiStopRoute(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.engine.Tracker().StopRoute(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{"ok": true})
}

func (h *Handlers) apiAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 100
	entries, err := h.engine.DB().ListAuditLog(limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, entries)
}

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	messaging := false
	if h.engine.MsgClient() != nil {
		messaging = h.engine.MsgClient().IsConnected()
	}
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"messaging": messaging,
	})
}
