package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const DefaultChannel = "tictactoe:results"

// Publisher announces finished games on a Redis pub/sub channel.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}

	return &Publisher{
		client:  client,
		channel: channel,
	}
}

// PublishResult - publishes a game result, it doesn't wait for subscribers.
func (that *Publisher) PublishResult(ctx context.Context, result *entity.GameResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal game result: %w", err)
	}

	if err = that.client.Publish(ctx, that.channel, resultJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game result: %w", err)
	}

	return nil
}

func (that *Publisher) Channel() string {
	return that.channel
}
