// Package eventbus publishes generation events over NATS, persisting them in
// a JetStream stream when the server supports it.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	// StreamName is the JetStream stream holding persona events.
	StreamName = "PERSONA"
	// SubjectWildcard matches every persona event subject.
	SubjectWildcard = "persona.>"
)

// Event wraps a payload with metadata.
type Event struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Bus is a NATS connection with an optional JetStream context.
type Bus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *zap.Logger
}

// Connect dials url. JetStream is used when the server has it enabled;
// otherwise events fall back to core NATS publish.
func Connect(url string, logger *zap.Logger) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.Name("persona-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	b := &Bus{nc: nc, logger: logger}

	js, err := nc.JetStream()
	if err != nil {
		logger.Warn("jetstream unavailable, using core publish", zap.Error(err))
		return b, nil
	}
	if err := ensureStream(js); err != nil {
		logger.Warn("jetstream stream unavailable, using core publish", zap.Error(err))
		return b, nil
	}
	b.js = js

	logger.Info("nats event bus ready", zap.String("stream", StreamName))
	return b, nil
}

func ensureStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectWildcard},
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

// Publish wraps payload in an Event and sends it on subject.
func (b *Bus) Publish(ctx context.Context, subject string, payload any) error {
	event, data, err := encode(subject, payload, time.Now().UTC())
	if err != nil {
		return err
	}

	if b.js != nil {
		if _, err := b.js.Publish(subject, data, nats.Context(ctx), nats.MsgId(event.ID)); err != nil {
			return fmt.Errorf("jetstream publish %s: %w", subject, err)
		}
		return nil
	}
	if err := b.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe calls handler for every event on subject until ctx is done.
func (b *Bus) Subscribe(ctx context.Context, subject string, handler func(Event)) error {
	sub, err := b.nc.Subscribe(subject, func(msg *nats.Msg) {
		var e Event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			b.logger.Warn("dropping undecodable event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		handler(e)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

// Ping reports whether the connection is usable.
func (b *Bus) Ping() error {
	if b.nc.Status() != nats.CONNECTED {
		return fmt.Errorf("nats status %s", b.nc.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (b *Bus) Close() {
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
	}
}

func encode(subject string, payload any, at time.Time) (Event, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, nil, fmt.Errorf("encode %s payload: %w", subject, err)
	}
	event := Event{
		ID:        uuid.NewString(),
		Subject:   subject,
		Data:      raw,
		Timestamp: at,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return Event{}, nil, fmt.Errorf("encode %s event: %w", subject, err)
	}
	return event, data, nil
}
