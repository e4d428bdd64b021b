package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisRelay publishes events on a Redis channel and forwards everything it
// receives on that channel to a local Broadcaster. Running one relay per
// instance makes every instance's websocket clients see every event.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   Broadcaster
	logger  zerolog.Logger

	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// NewRedisRelay creates a relay; call Start to begin forwarding
func NewRedisRelay(client *redis.Client, channel string, local Broadcaster, logger zerolog.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		local:   local,
		logger:  logger.With().Str("component", "redis_relay").Str("channel", channel).Logger(),
	}
}

// Broadcast publishes evt to every instance, including this one
func (r *RedisRelay) Broadcast(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal broadcast event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish broadcast event: %w", err)
	}
	return nil
}

// Start subscribes to the channel and forwards messages until ctx is done
// or Close is called.
func (r *RedisRelay) Start(ctx context.Context) error {
	r.pubsub = r.client.Subscribe(ctx, r.channel)
	if _, err := r.pubsub.Receive(ctx); err != nil {
		_ = r.pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ch := r.pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.forward(ctx, msg.Payload)
			}
		}
	}()

	r.logger.Info().Msg("Redis broadcast relay started")
	return nil
}

func (r *RedisRelay) forward(ctx context.Context, payload string) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		r.logger.Warn().Err(err).Msg("Dropping malformed relay payload")
		return
	}
	if err := r.local.Broadcast(ctx, evt); err != nil {
		r.logger.Warn().Err(err).Str("chatID", evt.ChatID).Msg("Local fan-out failed")
	}
}

// Close stops the subscription and waits for the forwarder to exit
func (r *RedisRelay) Close() error {
	if r.pubsub == nil {
		return nil
	}
	err := r.pubsub.Close()
	r.wg.Wait()
	return err
}
