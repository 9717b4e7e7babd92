package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

type gameStats interface {
	Stats() entity.Stats
	Rooms() []*entity.Room
}

type Server struct {
	logger *slog.Logger
	game   gameStats
}

func New(logger *slog.Logger, game gameStats) *Server {
	return &Server{
		logger: logger.With("component", "rest_server"),
		game:   game,
	}
}

func (that *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/ping", that.handlePing)
	router.GET("/stats", that.handleStats)
	router.GET("/rooms", that.handleRooms)

	return router
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down http server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
