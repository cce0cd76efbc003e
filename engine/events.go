package engine

const (
	EventJobScheduled EventType = iota + 1
	EventJobTriaged
	EventJobHeld
	EventJobsRescheduled
	EventJobDelivered
	EventJobFailedAttempt
	EventRouteStarted
	EventRouteFinished
	EventNotificationsSent
	EventMessagingConnected
	EventMessagingDisconnected
	EventLocatorConnected
	EventLocatorDisconnected
)

// --- Event payloads ---

type JobScheduledEvent struct {
	JobID     int64
	JobRef    string
	Date      string
	VehicleID int64
	Shift     string
}

type JobTriagedEvent struct {
	JobID  int64
	JobRef string
}

type JobHeldEvent struct {
	JobID  int64
	JobRef string
	Reason string
}

type JobsRescheduledEvent struct {
	OldDate  string
	Moved    int
	Notified int
}

type JobDeliveredEvent struct {
	JobID  int64
	JobRef string
}

type JobFailedAttemptEvent struct {
	JobID    int64
	JobRef   string
	Reason   string
	Attempts int
}

type RouteStartedEvent struct {
	VehicleID int64
	Plate     string
	Shift     string
}

type RouteFinishedEvent struct {
	VehicleID int64
	Plate     string
}

type NotificationsSentEvent struct {
	JobIDs []int64
	Date   string
	Shift  string
}

type ConnectionEvent struct {
	Detail string
}
