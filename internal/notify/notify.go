// Package notify delivers fire-and-forget booking lifecycle events. A failed
// notification never rolls back a booking transition; it is logged and dropped.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingPostponed = "booking_postponed"
	EventBookingCancelled = "booking_cancelled"
)

type Event struct {
	UserID    uint      `json:"user_id"`
	Name      string    `json:"event"`
	BookingID uint      `json:"booking_id"`
	Payload   any       `json:"payload,omitempty"`
	At        time.Time `json:"at"`
}

type Sink interface {
	Notify(ctx context.Context, ev Event)
}

// RedisSink publishes events as JSON on a pub/sub channel for downstream
// delivery workers (push, e-mail, etc).
type RedisSink struct {
	client  *redis.Client
	channel string
	logger  zerolog.Logger
}

func NewRedisSink(addr, channel string, logger zerolog.Logger) *RedisSink {
	return &RedisSink{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
		logger:  logger,
	}
}

func (s *RedisSink) Notify(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", ev.Name).Msg("notify: marshal failed")
		return
	}

	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.Warn().Err(err).Str("event", ev.Name).Uint("booking_id", ev.BookingID).
			Msg("notify: publish failed, dropping event")
	}
}

// NopSink is used when no Redis address is configured, and in tests.
type NopSink struct{}

func (NopSink) Notify(ctx context.Context, ev Event) {}

var (
	_ Sink = (*RedisSink)(nil)
	_ Sink = NopSink{}
)
