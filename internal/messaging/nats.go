package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

// Publisher sends reservation events.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type NATSClient struct {
	conn stan.Conn
}

type Config struct {
	URL       string
	ClusterID string
	ClientID  string
}

// NewNATSClient connects to NATS Streaming. With an empty URL it returns a disabled client
// whose Publish is a no-op.
func NewNATSClient(cfg Config) (*NATSClient, error) {
	if cfg.URL == "" {
		slog.Info("NATS URL not set, reservation events are disabled")
		return &NATSClient{}, nil
	}

	// Unique client ID so several replicas can share a cluster
	uniqueClientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	conn, err := stan.Connect(cfg.ClusterID, uniqueClientID,
		stan.NatsURL(cfg.URL),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			slog.Error("NATS Streaming connection lost", "error", reason)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL,
		"cluster", cfg.ClusterID,
		"client", uniqueClientID)

	return &NATSClient{conn: conn}, nil
}

// Enabled reports whether the client holds a live connection.
func (nc *NATSClient) Enabled() bool {
	return nc != nil && nc.conn != nil
}

func (nc *NATSClient) Publish(subject string, data interface{}) error {
	if !nc.Enabled() {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published message", "subject", subject)
	return nil
}

func (nc *NATSClient) Subscribe(subject string, handler stan.MsgHandler) (stan.Subscription, error) {
	if !nc.Enabled() {
		return nil, fmt.Errorf("failed to subscribe to subject %s: NATS is not configured", subject)
	}

	sub, err := nc.conn.Subscribe(subject, handler, stan.DurableName(subject+"-durable"))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	slog.Info("Subscribed to subject", "subject", subject)
	return sub, nil
}

func (nc *NATSClient) SubscribeQueue(subject, queue string, handler stan.MsgHandler) (stan.Subscription, error) {
	if !nc.Enabled() {
		return nil, fmt.Errorf("failed to queue subscribe to subject %s: NATS is not configured", subject)
	}

	sub, err := nc.conn.QueueSubscribe(subject, queue, handler,
		stan.DurableName(subject+"-"+queue+"-durable"),
		stan.SetManualAckMode(),
		stan.AckWait(30*time.Second),
		stan.MaxInflight(1))
	if err != nil {
		return nil, fmt.Errorf("failed to queue subscribe to subject %s: %w", subject, err)
	}

	slog.Info("Subscribed to subject", "subject", subject, "queue", queue)
	return sub, nil
}

func (nc *NATSClient) Close() error {
	if nc.Enabled() {
		return nc.conn.Close()
	}
	return nil
}
