// Package redis fans document change events out across server instances
// over Redis pub/sub, one channel per document.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	svgdocSvc "vecteditor/internal/domain/services/svgdoc"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "vecteditor:doc:"

// Notifier publishes change events and relays them to subscribers
type Notifier struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewNotifier connects to redisURL and checks the connection
func NewNotifier(ctx context.Context, redisURL string, logger *slog.Logger) (*Notifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewNotifierWithClient(client, logger), nil
}

// NewNotifierWithClient wraps an existing client
func NewNotifierWithClient(client *redis.Client, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, prefix: defaultPrefix, logger: logger}
}

func (n *Notifier) channel(documentID string) string {
	return n.prefix + documentID
}

// Publish sends an event to every subscriber of its document
func (n *Notifier) Publish(ctx context.Context, event *svgdocSvc.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel(event.DocumentID), payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Subscribe returns the events of one document until cancel is called or
// ctx ends. The subscription is active when Subscribe returns.
func (n *Notifier) Subscribe(ctx context.Context, documentID string) (<-chan svgdocSvc.ChangeEvent, func(), error) {
	pubsub := n.client.Subscribe(ctx, n.channel(documentID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", documentID, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan svgdocSvc.ChangeEvent, 16)

	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event svgdocSvc.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					n.logger.Warn("dropping malformed change event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

// Ping checks the connection
func (n *Notifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

// Close releases the client
func (n *Notifier) Close() error {
	return n.client.Close()
}
