package suite

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const maxWaitDuration = 10 * time.Second

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Redis   *miniredis.Miniredis
	Storage *redis.Client
}

// New returns a context bounded by maxWaitDuration and a suite backed by an in-process Redis.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("could not start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})

	if err = redisClient.Ping(ctx).Err(); err != nil {
		server.Close()
		t.Fatalf("could not connect to redis: %v", err)
	}

	t.Cleanup(func() {
		_ = redisClient.Close()
		server.Close()
	})

	return ctx, &Suite{
		T:       t,
		Logger:  logger,
		Redis:   server,
		Storage: redisClient,
	}
}
