package www

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/engine"
)

type SSEEvent struct {
	Event string
	Data  string
}

type EventHub struct {
	mu        sync.RWMutex
	clients   map[chan SSEEvent]struct{}
	broadcast chan SSEEvent
	stopChan  chan struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients:   make(map[chan SSEEvent]struct{}),
		broadcast: make(chan SSEEvent, 256),
		stopChan:  make(chan struct{}),
	}
}

func (h *EventHub) Start() {
	go h.run()
}

func (h *EventHub) Stop() {
	select {
	case h.stopChan <- struct{}{}:
	default:
	}
}

func (h *EventHub) run() {
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-h.stopChan:
			return
		case evt := <-h.broadcast:
			h.mu.RLock()
			for ch := range h.clients {
				select {
				case ch <- evt:
				default:
					// drop if full
				}
			}
			h.mu.RUnlock()
		case <-keepalive.C:
			h.mu.RLock()
			for ch := range h.clients {
				select {
				case ch <- SSEEvent{Event: "keepalive", Data: "ping"}:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *EventHub) Broadcast(event, data string) {
	select {
	case h.broadcast <- SSEEvent{Event: event, Data: data}:
	default:
	}
}

func (h *EventHub) AddClient() chan SSEEvent {
	ch := make(chan SSEEvent, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) RemoveClient(ch chan SSEEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SetupEngineListeners wires engine events to SSE broadcasts so the
// board refreshes itself.
func (h *EventHub) SetupEngineListeners(eng *engine.Engine) {
	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobScheduledEvent)
		h.Broadcast("board-update", fmt.Sprintf(`{"type":"scheduled","job_id":%d,"date":"%s","vehicle_id":%d,"shift":"%s"}`, ev.JobID, ev.Date, ev.VehicleID, ev.Shift))
	}, engine.EventJobScheduled)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobTriagedEvent)
		h.Broadcast("board-update", fmt.Sprintf(`{"type":"triaged","job_id":%d}`, ev.JobID))
	}, engine.EventJobTriaged)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobHeldEvent)
		h.Broadcast("board-update", fmt.Sprintf(`{"type":"held","job_id":%d}`, ev.JobID))
	}, engine.EventJobHeld)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobsRescheduledEvent)
		h.Broadcast("board-update", fmt.Sprintf(`{"type":"bulk_reschedule","old_date":"%s","moved":%d}`, ev.OldDate, ev.Moved))
	}, engine.EventJobsRescheduled)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobDeliveredEvent)
		h.Broadcast("job-update", fmt.Sprintf(`{"type":"delivered","job_id":%d}`, ev.JobID))
	}, engine.EventJobDelivered)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobFailedAttemptEvent)
		h.Broadcast("job-update", fmt.Sprintf(`{"type":"failed_attempt","job_id":%d,"attempts":%d}`, ev.JobID, ev.Attempts))
	}, engine.EventJobFailedAttempt)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.RouteStartedEvent)
		h.Broadcast("route-update", fmt.Sprintf(`{"type":"started","vehicle_id":%d,"shift":"%s"}`, ev.VehicleID, ev.Shift))
	}, engine.EventRouteStarted)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.RouteFinishedEvent)
		h.Broadcast("route-update", fmt.Sprintf(`{"type":"finished","vehicle_id":%d}`, ev.VehicleID))
	}, engine.EventRouteFinished)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.NotificationsSentEvent)
		h.Broadcast("board-update", fmt.Sprintf(`{"type":"notified","date":"%s","shift":"%s","count":%d}`, ev.Date, ev.Shift, len(ev.JobIDs)))
	}, engine.EventNotificationsSent)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("system-status", `{"messaging":"connected"}`)
	}, engine.EventMessagingConnected)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("system-status", `{"messaging":"disconnected"}`)
	}, engine.EventMessagingDisconnected)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("system-status", `{"gps":"connected"}`)
	}, engine.EventLocatorConnected)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("system-status", `{"gps":"disconnected"}`)
	}, engine.EventLocatorDisconnected)
}

// SSEHandler serves the SSE endpoint.
func (h *EventHub) SSEHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.AddClient()
	defer h.RemoveClient(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Event, evt.Data); err != nil {
				log.Printf("sse: write error: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}
