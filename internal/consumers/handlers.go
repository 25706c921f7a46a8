package consumers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"kinobilet/internal/metrics"
	"kinobilet/internal/models"

	"github.com/nats-io/stan.go"
)

type Handlers struct {
	log *slog.Logger
}

func NewHandlers(log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{log: log}
}

func (h *Handlers) HandleReservationCreated(m *stan.Msg) {
	h.ack(m, h.reservationCreated(m.Data))
}

func (h *Handlers) HandleReservationPaid(m *stan.Msg) {
	h.ack(m, h.reservationPaid(m.Data))
}

func (h *Handlers) HandleReservationExpired(m *stan.Msg) {
	h.ack(m, h.reservationExpired(m.Data))
}

func (h *Handlers) reservationCreated(data []byte) error {
	var event models.ReservationCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal reservation created event: %w", err)
	}

	metrics.ConsumedEvents.WithLabelValues(models.EventReservationCreated).Inc()
	h.log.Info("Reservation created",
		"reservation_id", event.ReservationID,
		"session_id", event.SessionID,
		"seats", event.SeatsCount)
	return nil
}

func (h *Handlers) reservationPaid(data []byte) error {
	var event models.ReservationPaidEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal reservation paid event: %w", err)
	}

	metrics.ConsumedEvents.WithLabelValues(models.EventReservationPaid).Inc()
	h.log.Info("Reservation paid",
		"reservation_id", event.ReservationID,
		"session_id", event.SessionID)
	return nil
}

func (h *Handlers) reservationExpired(data []byte) error {
	var event models.ReservationExpiredEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal reservation expired event: %w", err)
	}

	metrics.ConsumedEvents.WithLabelValues(models.EventReservationExpired).Inc()
	h.log.Info("Reservation payment window elapsed",
		"reservation_id", event.ReservationID,
		"session_id", event.SessionID,
		"booked_at", event.BookedAt)
	return nil
}

// ack acknowledges every message, malformed ones included: redelivery cannot fix a payload.
func (h *Handlers) ack(m *stan.Msg, err error) {
	if err != nil {
		h.log.Error("Dropping event", "subject", m.Subject, "sequence", m.Sequence, "error", err)
	}
	if err := m.Ack(); err != nil {
		h.log.Error("Failed to ack event", "subject", m.Subject, "sequence", m.Sequence, "error", err)
	}
}
