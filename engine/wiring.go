package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/messaging"
)

func (e *Engine) wireEventHandlers() {
	// Placement changes: audit and publish
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobScheduledEvent)
		e.logFn("engine: job %s scheduled %s/%s on vehicle %d", ev.JobRef, ev.Date, ev.Shift, ev.VehicleID)
		e.db.AppendAudit("job", ev.JobID, ev.JobRef, "scheduled", "", fmt.Sprintf("%s %s vehicle=%d", ev.Date, ev.Shift, ev.VehicleID), "system")
		e.enqueueEvent(messaging.MsgJobScheduled, ev.JobRef, messaging.JobScheduled{
			JobRef:    ev.JobRef,
			Date:      ev.Date,
			VehicleID: ev.VehicleID,
			Shift:     ev.Shift,
		})
	}, EventJobScheduled)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobTriagedEvent)
		e.db.AppendAudit("job", ev.JobID, ev.JobRef, "triaged", "", "", "system")
	}, EventJobTriaged)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobHeldEvent)
		e.logFn("engine: job %s held: %s", ev.JobRef, ev.Reason)
		e.db.AppendAudit("job", ev.JobID, ev.JobRef, "held", "", ev.Reason, "system")
	}, EventJobHeld)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobsRescheduledEvent)
		e.logFn("engine: day %s cleared, %d jobs back to triage (%d notified)", ev.OldDate, ev.Moved, ev.Notified)
		e.db.AppendAudit("board", 0, "", "bulk_reschedule", ev.OldDate, fmt.Sprintf("moved=%d notified=%d", ev.Moved, ev.Notified), "system")
		e.enqueueEvent(messaging.MsgJobsRescheduled, "", messaging.JobsRescheduled{
			OldDate:  ev.OldDate,
			Moved:    ev.Moved,
			Notified: ev.Notified,
		})
	}, EventJobsRescheduled)

	// Execution outcomes change job rows underneath the dispatcher,
	// its board copy has to follow.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobDeliveredEvent)
		e.logFn("engine: job %s delivered", ev.JobRef)
		e.db.AppendAudit("job", ev.JobID, ev.JobRef, "delivered", "", "", "system")
		e.enqueueEvent(messaging.MsgJobDelivered, ev.JobRef, messaging.JobDelivered{
			JobRef:      ev.JobRef,
			DeliveredAt: time.Now(),
		})
		e.refreshBoard()
	}, EventJobDelivered)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobFailedAttemptEvent)
		e.logFn("engine: job %s attempt %d failed: %s", ev.JobRef, ev.Attempts, ev.Reason)
		e.db.AppendAudit("job", ev.JobID, ev.JobRef, "failed_attempt", "", ev.Reason, "system")
		e.enqueueEvent(messaging.MsgJobFailedAttempt, ev.JobRef, messaging.JobFailedAttempt{
			JobRef:   ev.JobRef,
			Reason:   ev.Reason,
			Attempts: ev.Attempts,
		})
		e.refreshBoard()
	}, EventJobFailedAttempt)

	// Route lifecycle: audit and publish
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(RouteStartedEvent)
		e.db.AppendAudit("vehicle", ev.VehicleID, ev.Plate, "route_started", "", ev.Shift, "system")
		e.enqueueEvent(messaging.MsgRouteStarted, "", messaging.RouteStarted{
			VehicleID: ev.VehicleID,
			Plate:     ev.Plate,
			Shift:     ev.Shift,
		})
	}, EventRouteStarted)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(RouteFinishedEvent)
		e.db.AppendAudit("vehicle", ev.VehicleID, ev.Plate, "route_finished", "", "", "system")
		e.enqueueEvent(messaging.MsgRouteFinished, "", messaging.RouteFinished{
			VehicleID: ev.VehicleID,
			Plate:     ev.Plate,
		})
	}, EventRouteFinished)

	// Dispatched notifications: audit each job and publish one summary
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(NotificationsSentEvent)
		refs := make([]string, 0, len(ev.JobIDs))
		for _, id := range ev.JobIDs {
			ref := ""
			if j, err := e.db.GetJob(id); err == nil {
				ref = j.PublicRef
				refs = append(refs, j.PublicRef)
			}
			e.db.AppendAudit("job", id, ref, "notified", "", ev.Date+" "+ev.Shift, "system")
		}
		e.logFn("engine: %d customers notified for %s %s", len(ev.JobIDs), ev.Date, ev.Shift)
		e.enqueueEvent(messaging.MsgNotificationsSent, "", messaging.NotificationsSent{
			Date:    ev.Date,
			Shift:   ev.Shift,
			JobRefs: refs,
		})
		e.refreshBoard()
	}, EventNotificationsSent)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		e.logFn("engine: %s", ev.Detail)
	}, EventMessagingConnected, EventMessagingDisconnected, EventLocatorConnected, EventLocatorDisconnected)
}

// enqueueEvent wraps a payload in an envelope and parks it in the
// outbox. The drainer gets it onto the wire.
func (e *Engine) enqueueEvent(msgType, jobRef string, payload any) {
	env := messaging.NewEnvelope(msgType, e.cfg.Messaging.HubID, payload)
	data, err := env.Encode()
	if err != nil {
		log.Printf("engine: encode %s event: %v", msgType, err)
		return
	}
	if err := e.db.EnqueueOutbox(e.cfg.Messaging.EventsTopic, data, msgType, jobRef); err != nil {
		log.Printf("engine: enqueue %s event: %v", msgType, err)
	}
}

func (e *Engine) refreshBoard() {
	if e.dispatcher == nil {
		return
	}
	if err := e.dispatcher.Refresh(); err != nil {
		e.logFn("engine: refresh board: %v", err)
	}
}
