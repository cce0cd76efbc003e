package engine

// dispatchEmitter bridges the dispatch package's emitter interface to the EventBus.
type dispatchEmitter struct {
	bus *EventBus
}

func (e *dispatchEmitter) EmitJobScheduled(jobID int64, publicRef, date string, vehicleID int64, shift string) {
	e.bus.Emit(Event{Type: EventJobScheduled, Payload: JobScheduledEvent{
		JobID:     jobID,
		JobRef:    publicRef,
		Date:      date,
		VehicleID: vehicleID,
		Shift:     shift,
	}})
}

func (e *dispatchEmitter) EmitJobTriaged(jobID int64, publicRef string) {
	e.bus.Emit(Event{Type: EventJobTriaged, Payload: JobTriagedEvent{
		JobID:  jobID,
		JobRef: publicRef,
	}})
}

func (e *dispatchEmitter) EmitJobHeld(jobID int64, publicRef, reason string) {
	e.bus.Emit(Event{Type: EventJobHeld, Payload: JobHeldEvent{
		JobID:  jobID,
		JobRef: publicRef,
		Reason: reason,
	}})
}

func (e *dispatchEmitter) EmitJobsRescheduled(oldDate string, moved, notified int) {
	e.bus.Emit(Event{Type: EventJobsRescheduled, Payload: JobsRescheduledEvent{
		OldDate:  oldDate,
		Moved:    moved,
		Notified: notified,
	}})
}

// trackerEmitter bridges the tracker's route and proof events to the EventBus.
type trackerEmitter struct {
	bus *EventBus
}

func (e *trackerEmitter) EmitRouteStarted(vehicleID int64, plate, shift string) {
	e.bus.Emit(Event{Type: EventRouteStarted, Payload: RouteStartedEvent{
		VehicleID: vehicleID,
		Plate:     plate,
		Shift:     shift,
	}})
}

func (e *trackerEmitter) EmitRouteFinished(vehicleID int64, plate string) {
	e.bus.Emit(Event{Type: EventRouteFinished, Payload: RouteFinishedEvent{
		VehicleID: vehicleID,
		Plate:     plate,
	}})
}

func (e *trackerEmitter) EmitJobDelivered(jobID int64, publicRef string) {
	e.bus.Emit(Event{Type: EventJobDelivered, Payload: JobDeliveredEvent{
		JobID:  jobID,
		JobRef: publicRef,
	}})
}

func (e *trackerEmitter) EmitJobFailedAttempt(jobID int64, publicRef, reason string, attempts int) {
	e.bus.Emit(Event{Type: EventJobFailedAttempt, Payload: JobFailedAttemptEvent{
		JobID:    jobID,
		JobRef:   publicRef,
		Reason:   reason,
		Attempts: attempts,
	}})
}

// notifierEmitter bridges the notifier's sent confirmations to the EventBus.
type notifierEmitter struct {
	bus *EventBus
}

func (e *notifierEmitter) EmitNotificationsSent(jobIDs []int64, date, shift string) {
	e.bus.Emit(Event{Type: EventNotificationsSent, Payload: NotificationsSentEvent{
		JobIDs: jobIDs,
		Date:   date,
		Shift:  shift,
	}})
}
