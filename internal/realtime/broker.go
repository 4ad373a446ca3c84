package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FanoutTopic is the Redis channel every instance publishes to and
// subscribes on.
const FanoutTopic = "staffhub:fanout"

// Fanout asks every instance to deliver Frame to its local subscribers of
// Channel, skipping the connection whose id is Skip.
type Fanout struct {
	Channel string          `json:"channel"`
	Frame   json.RawMessage `json:"frame"`
	Skip    string          `json:"skip,omitempty"`
}

// Broker carries fan-outs to the hubs that hold the connections.
type Broker interface {
	Publish(ctx context.Context, f Fanout) error
	Close() error
}

// LocalBroker delivers straight to one in-process hub. It is all a single
// instance needs.
type LocalBroker struct {
	hub *Hub
}

func NewLocalBroker(hub *Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

func (b *LocalBroker) Publish(_ context.Context, f Fanout) error {
	b.hub.Deliver(f.Channel, f.Frame, f.Skip)
	return nil
}

func (b *LocalBroker) Close() error { return nil }

// RedisBroker spreads fan-outs across instances with Redis pub/sub. Every
// instance, including the publisher, delivers what it receives to its own
// hub, so Publish never touches the local hub directly.
type RedisBroker struct {
	client *redis.Client
	sub    *redis.PubSub
	hub    *Hub
	logger *zap.Logger
	done   chan struct{}
}

// NewRedisBroker subscribes to FanoutTopic and starts relaying to hub. It
// fails if the subscription cannot be confirmed.
func NewRedisBroker(ctx context.Context, client *redis.Client, hub *Hub, logger *zap.Logger) (*RedisBroker, error) {
	sub := client.Subscribe(ctx, FanoutTopic)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", FanoutTopic, err)
	}

	b := &RedisBroker{
		client: client,
		sub:    sub,
		hub:    hub,
		logger: logger,
		done:   make(chan struct{}),
	}
	go b.relay()
	return b, nil
}

func (b *RedisBroker) Publish(ctx context.Context, f Fanout) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fanout: %w", err)
	}
	if err := b.client.Publish(ctx, FanoutTopic, payload).Err(); err != nil {
		return fmt.Errorf("publish fanout: %w", err)
	}
	return nil
}

func (b *RedisBroker) relay() {
	defer close(b.done)
	for msg := range b.sub.Channel() {
		var f Fanout
		if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
			b.logger.Warn("dropping malformed fanout", zap.Error(err))
			continue
		}
		b.hub.Deliver(f.Channel, f.Frame, f.Skip)
	}
}

// Close ends the subscription and waits for the relay to stop.
func (b *RedisBroker) Close() error {
	err := b.sub.Close()
	<-b.done
	return err
}
