package notify

import "fmt"

// Template kinds the gateway knows how to render.
const (
	TemplateDeliveryScheduled   = "delivery_scheduled"
	TemplateAssistanceScheduled = "assistance_scheduled"
	TemplateRescheduleApology   = "reschedule_apology"
)

// Message is one outbound customer notification.
type Message struct {
	JobRef       string            `json:"job_ref"`
	Channel      string            `json:"channel"` // customer phone
	TemplateKind string            `json:"template_kind"`
	Payload      map[string]string `json:"payload"`
}

// Transport is the outbound messaging collaborator. SendBatch reports only
// whole-batch success or failure; there is no partial-success signal.
type Transport interface {
	SendBatch(messages []Message) error
	SendSingle(message Message) error
}

// TransportError means the gateway was unreachable or refused the batch.
// Nothing was marked sent; the same batch is safe to retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("notify transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
