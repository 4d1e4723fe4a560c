package worker

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/docbook/docbook-api/internal/email"
	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/pkg/logger"
	"github.com/docbook/docbook-api/pkg/messaging"
	"github.com/docbook/docbook-api/pkg/metrics"
)

// Notifier consumes appointment events from the broker and sends the
// matching email to the patient. Delivery is best effort; a failed send
// is counted and logged, never retried here.
type Notifier struct {
	broker  messaging.Broker
	emails  email.Service
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewNotifier(broker messaging.Broker, emails email.Service, logger *logger.Logger, metrics *metrics.Metrics) *Notifier {
	return &Notifier{
		broker:  broker,
		emails:  emails,
		logger:  logger,
		metrics: metrics,
	}
}

// Start subscribes to both appointment channels and blocks until the
// context is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	booked, err := n.broker.Subscribe(ctx, model.EventAppointmentBooked)
	if err != nil {
		return err
	}
	cancelled, err := n.broker.Subscribe(ctx, model.EventAppointmentCancelled)
	if err != nil {
		return err
	}

	n.logger.Info("Starting notifier")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		n.consume(ctx, model.EventAppointmentBooked, booked)
	}()
	go func() {
		defer wg.Done()
		n.consume(ctx, model.EventAppointmentCancelled, cancelled)
	}()
	wg.Wait()

	n.logger.Info("Notifier stopped")
	return nil
}

func (n *Notifier) consume(ctx context.Context, eventType string, messages <-chan []byte) {
	for payload := range messages {
		var event model.AppointmentEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			n.logger.Error(err, "Failed to decode event", "event_type", eventType)
			n.metrics.NotificationsSent.WithLabelValues(eventType, "decode_error").Inc()
			continue
		}

		if err := n.notify(ctx, eventType, &event); err != nil {
			n.logger.Error(err, "Failed to send notification",
				"event_type", eventType,
				"appointment_id", event.AppointmentID.String())
			n.metrics.NotificationsSent.WithLabelValues(eventType, "error").Inc()
			continue
		}

		n.metrics.NotificationsSent.WithLabelValues(eventType, "success").Inc()
	}
}

func (n *Notifier) notify(ctx context.Context, eventType string, event *model.AppointmentEvent) error {
	switch eventType {
	case model.EventAppointmentBooked:
		return n.emails.SendBookingConfirmation(ctx, event.UserEmail, event.UserName, event.DoctorName, event.SlotDate, event.SlotTime)
	case model.EventAppointmentCancelled:
		return n.emails.SendCancellation(ctx, event.UserEmail, event.UserName, event.DoctorName, event.SlotDate, event.SlotTime)
	}
	return nil
}
