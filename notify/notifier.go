package notify

import (
	"log"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// Emitter is the interface adapters must satisfy to bridge notifier events to the engine.
type Emitter interface {
	EmitNotificationsSent(jobIDs []int64, date, shift string)
}

// Notifier owns the send-then-mark flow for customer notifications.
type Notifier struct {
	db        *store.DB
	transport Transport
	emitter   Emitter
}

func NewNotifier(db *store.DB, transport Transport, emitter Emitter) *Notifier {
	return &Notifier{db: db, transport: transport, emitter: emitter}
}

// BuildMessage renders the outbound message for one job.
func BuildMessage(j *store.Job) Message {
	template := TemplateDeliveryScheduled
	if j.Kind == store.KindAssistance {
		template = TemplateAssistanceScheduled
	}
	return Message{
		JobRef:       j.PublicRef,
		Channel:      j.CustomerPhone,
		TemplateKind: template,
		Payload: map[string]string{
			"customer_name": j.CustomerName,
			"order_number":  j.OrderNumber,
			"date":          j.ScheduledDate,
			"shift":         j.Shift,
		},
	}
}

// SendOwed sends one batch for every owed job in the set and marks each as
// notified only after the gateway confirms the whole batch. On failure nothing
// is marked; the caller gets a retryable TransportError. A retry after a
// failure that actually delivered can duplicate messages — the gateway gives
// no per-message signal, and that limitation is accepted.
func (n *Notifier) SendOwed(jobs []*store.Job) (int, error) {
	owed, _ := PendingFor(jobs)
	if len(owed) == 0 {
		return 0, nil
	}

	msgs := make([]Message, 0, len(owed))
	for _, j := range owed {
		msgs = append(msgs, BuildMessage(j))
	}
	if err := n.transport.SendBatch(msgs); err != nil {
		return 0, &TransportError{Op: "send_batch", Err: err}
	}

	ids := make([]int64, 0, len(owed))
	for _, j := range owed {
		if err := n.db.MarkJobNotified(j.ID, j.ScheduledDate, j.Shift); err != nil {
			// The message went out; losing the mark only risks a duplicate later.
			log.Printf("notify: mark sent job %d: %v", j.ID, err)
			continue
		}
		ids = append(ids, j.ID)
	}
	if n.emitter != nil && len(owed) > 0 {
		n.emitter.EmitNotificationsSent(ids, owed[0].ScheduledDate, owed[0].Shift)
	}
	return len(owed), nil
}

// SendRescheduleNotice sends the one-off apology for a bulk reschedule.
// One attempt per job; a failure is reported, not retried here.
func (n *Notifier) SendRescheduleNotice(j *store.Job, oldDate string) error {
	msg := Message{
		JobRef:       j.PublicRef,
		Channel:      j.CustomerPhone,
		TemplateKind: TemplateRescheduleApology,
		Payload: map[string]string{
			"customer_name": j.CustomerName,
			"order_number":  j.OrderNumber,
			"old_date":      oldDate,
		},
	}
	if err := n.transport.SendSingle(msg); err != nil {
		return &TransportError{Op: "send_single", Err: err}
	}
	return nil
}
