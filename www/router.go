// Package www is the back-office HTTP surface: a JSON API for the
// scheduling board plus an SSE stream that keeps it live. The board
// front-end is a separate app, this process serves data only.
package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/engine"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	h.ensureDefaultAdmin(eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	// Session
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	// Read API (no auth required)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealthCheck)
		r.Get("/board/slots", h.apiBoardSlots)
		r.Get("/board/slot", h.apiSlotJobs)
		r.Get("/board/triage", h.apiTriage)
		r.Get("/board/held", h.apiHeld)
		r.Get("/jobs", h.apiListJobs)
		r.Get("/jobs/{id}", h.apiGetJob)
		r.Get("/jobs/{id}/history", h.apiJobHistory)
		r.Get("/notifications/pending", h.apiPendingNotifications)
		r.Get("/vehicles", h.apiListVehicles)
		r.Get("/vehicles/live", h.apiVehiclesLive)
		r.Get("/audit", h.apiAuditLog)
	})

	// Write API
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/jobs", h.apiCreateJob)
		r.Post("/api/jobs/{id}/move", h.apiMoveJob)
		r.Post("/api/jobs/{id}/cancel", h.apiCancelJob)
		r.Post("/api/jobs/{id}/delivered", h.apiMarkDelivered)
		r.Post("/api/jobs/{id}/failed", h.apiMarkFailedAttempt)
		r.Post("/api/board/reschedule", h.apiBulkReschedule)
		r.Post("/api/notifications/send", h.apiSendNotifications)
		r.Post("/api/routes/optimize", h.apiOptimizeRoute)
		r.Post("/api/routes/apply", h.apiApplyRoute)
		r.Post("/api/vehicles", h.apiCreateVehicle)
		r.Post("/api/vehicles/{id}", h.apiUpdateVehicle)
		r.Delete("/api/vehicles/{id}", h.apiDeleteVehicle)
		r.Post("/api/vehicles/{id}/route/start", h.apiStartRoute)
		r.Post("/api/vehicles/{id}/route/stop", h.apiStopRoute)
	})

	stopFn := func() {
		hub.Stop()
	}

	return r, stopFn
}
