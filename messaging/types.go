package messaging

import "time"

// Message types published to the events topic.
const (
	MsgJobScheduled      = "job.scheduled"
	MsgJobDelivered      = "job.delivered"
	MsgJobFailedAttempt  = "job.failed_attempt"
	MsgJobsRescheduled   = "job.rescheduled_bulk"
	MsgRouteStarted      = "route.started"
	MsgRouteFinished     = "route.finished"
	MsgNotificationsSent = "notifications.sent"
)

type JobScheduled struct {
	JobRef    string `json:"job_ref"`
	Date      string `json:"date"`
	VehicleID int64  `json:"vehicle_id"`
	Shift     string `json:"shift"`
}

type JobDelivered struct {
	JobRef      string    `json:"job_ref"`
	DeliveredAt time.Time `json:"delivered_at"`
}

type JobFailedAttempt struct {
	JobRef   string `json:"job_ref"`
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
}

type JobsRescheduled struct {
	OldDate  string `json:"old_date"`
	Moved    int    `json:"moved"`
	Notified int    `json:"notified"`
}

type RouteStarted struct {
	VehicleID int64  `json:"vehicle_id"`
	Plate     string `json:"plate"`
	Shift     string `json:"shift"`
}

type RouteFinished struct {
	VehicleID int64  `json:"vehicle_id"`
	Plate     string `json:"plate"`
}

type NotificationsSent struct {
	Date    string   `json:"date"`
	Shift   string   `json:"shift"`
	JobRefs []string `json:"job_refs"`
}
