package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kinobilet/internal/config"
	"kinobilet/internal/logger"
	"kinobilet/internal/messaging"
	"kinobilet/internal/models"

	"github.com/nats-io/stan.go"
)

const queueGroup = "consumers"

// Subscriber is the part of the NATS client the consumers need.
type Subscriber interface {
	SubscribeQueue(subject, queue string, handler stan.MsgHandler) (stan.Subscription, error)
	Close() error
}

type ConsumerService struct {
	nats     Subscriber
	handlers *Handlers
	subs     []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	if cfg.NATS.URL == "" {
		return nil, errors.New("NATS_URL is required for consumers")
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	return NewConsumerServiceWith(natsClient, NewHandlers(logger.WithFields("component", "consumers"))), nil
}

func NewConsumerServiceWith(nats Subscriber, handlers *Handlers) *ConsumerService {
	return &ConsumerService{
		nats:     nats,
		handlers: handlers,
	}
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	routes := []struct {
		subject string
		handler stan.MsgHandler
	}{
		{models.EventReservationCreated, cs.handlers.HandleReservationCreated},
		{models.EventReservationPaid, cs.handlers.HandleReservationPaid},
		{models.EventReservationExpired, cs.handlers.HandleReservationExpired},
	}

	for _, r := range routes {
		sub, err := cs.nats.SubscribeQueue(r.subject, queueGroup, r.handler)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", r.subject, err)
		}
		cs.subs = append(cs.subs, sub)
	}

	slog.Info("All consumers started successfully", "subscriptions", len(cs.subs))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	for _, sub := range cs.subs {
		if ctx.Err() != nil {
			break
		}
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}
	cs.subs = nil

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			return err
		}
	}

	return nil
}
