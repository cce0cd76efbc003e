package www

import (
	"errors"
	"net/http"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/dispatch"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/lifecycle"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

func (h *Handlers) apiListJobs(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	jobs, err := h.engine.DB().ListJobs(kind)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, jobs)
}

func (h *Handlers) apiGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	job, err := h.engine.DB().GetJob(id)
	if err != nil {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	h.jsonOK(w, job)
}

func (h *Handlers) apiJobHistory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	history, err := h.engine.DB().ListJobHistory(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, history)
}

func (h *Handlers) apiCreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind          string  `json:"kind"`
		CustomerName  string  `json:"customer_name"`
		CustomerPhone string  `json:"customer_phone"`
		OrderNumber   string  `json:"order_number"`
		Address       string  `json:"address"`
		PaymentDue    float64 `json:"payment_due"`
		PaymentMethod string  `json:"payment_method"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.CustomerName == "" {
		h.jsonError(w, "customer_name is required", http.StatusBadRequest)
		return
	}
	if req.Kind == "" {
		req.Kind = store.KindDelivery
	}
	if req.Kind != store.KindDelivery && req.Kind != store.KindAssistance {
		h.jsonError(w, "unknown kind: "+req.Kind, http.StatusBadRequest)
		return
	}

	j := &store.Job{
		Kind:          req.Kind,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		OrderNumber:   req.OrderNumber,
		Address:       req.Address,
		PaymentDue:    req.PaymentDue,
		PaymentMethod: req.PaymentMethod,
	}
	if err := h.engine.DB().CreateJob(j); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.DB().AppendAudit("job", j.ID, j.PublicRef, "created", "", j.CustomerName, h.getUsername(r))
	h.engine.Dispatcher().Refresh()
	h.jsonOK(w, j)
}

func (h *Handlers) apiMoveJob(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Destination string `json:"destination"` // "slot", "triage", "hold"
		Date        string `json:"date"`
		VehicleID   int64  `json:"vehicle_id"`
		Shift       string `json:"shift"`
		Reason      string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	var dest dispatch.Destination
	switch req.Destination {
	case "slot":
		dest = dispatch.Slot(req.Date, req.VehicleID, req.Shift)
	case "triage":
		dest = dispatch.Triage()
	case "hold":
		dest = dispatch.Hold(req.Reason)
	default:
		h.jsonError(w, "unknown destination: "+req.Destination, http.StatusBadRequest)
		return
	}

	job, err := h.engine.Dispatcher().Move(id, dest)
	if err != nil {
		h.moveError(w, err)
		return
	}
	h.jsonOK(w, job)
}

func (h *Handlers) apiCancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	job, err := h.engine.Dispatcher().Cancel(id, req.Reason)
	if err != nil {
		h.moveError(w, err)
		return
	}
	h.engine.DB().AppendAudit("job", id, job.PublicRef, "cancelled", "", req.Reason, h.getUsername(r))
	h.jsonOK(w, job)
}

func (h *Handlers) apiMarkDelivered(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		SignatureRef    string   `json:"signature_ref"`
		PhotoRefs       []string `json:"photo_refs"`
		PaymentProofRef string   `json:"payment_proof_ref"`
		Lat             float64  `json:"lat"`
		Lon             float64  `json:"lon"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	job, err := h.engine.Tracker().MarkDelivered(id, lifecycle.ProofBundle{
		SignatureRef:    req.SignatureRef,
		PhotoRefs:       req.PhotoRefs,
		PaymentProofRef: req.PaymentProofRef,
		Lat:             req.Lat,
		Lon:             req.Lon,
	})
	if err != nil {
		h.moveError(w, err)
		return
	}
	h.jsonOK(w, job)
}

func (h *Handlers) apiMarkFailedAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		PhotoRef string `json:"photo_ref"`
		Reason   string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	job, err := h.engine.Tracker().MarkFailedAttempt(id, req.PhotoRef, req.Reason)
	if err != nil {
		h.moveError(w, err)
		return
	}
	h.jsonOK(w, job)
}

// moveError maps lifecycle violations to 409, validation problems to
// 422 and anything else to 500.
func (h *Handlers) moveError(w http.ResponseWriter, err error) {
	var ite *lifecycle.InvalidTransitionError
	if errors.As(err, &ite) {
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	var ve *lifecycle.ValidationError
	if errors.As(err, &ve) {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.jsonError(w, err.Error(), http.StatusInternalServerError)
}
