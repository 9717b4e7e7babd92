package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

type gameManager interface {
	Connect(ctx context.Context, playerID string) *entity.Player
	SetName(ctx context.Context, playerID, name string) error
	RequestToPlay(ctx context.Context, playerID, name string) error
	MakeMove(ctx context.Context, playerID string, cell int, sign string) error
	Disconnect(ctx context.Context, playerID string) error
}

type handlerFunc func(ctx context.Context, playerID string, msg *Message) error

type Options struct {
	// AllowedOrigin is the only browser origin accepted; empty accepts any.
	AllowedOrigin string
}

type Server struct {
	logger *slog.Logger
	hub    *Hub
	game   gameManager

	upgrader      websocket.Upgrader
	allowedOrigin string

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, hub *Hub, game gameManager, opts Options) *Server {
	server := &Server{
		logger: logger.With("component", "ws_server"),
		hub:    hub,
		game:   game,

		allowedOrigin: opts.AllowedOrigin,

		handlers: make(map[string]handlerFunc),
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     server.checkOrigin,
	}

	server.handlers[entity.ActionRequestToPlay] = server.handleRequestToPlay
	server.handlers[entity.ActionPlayerMove] = server.handlePlayerMove
	server.handlers[entity.ActionPlayerName] = server.handlePlayerName

	return server
}

// Handler routes GET /ws to the upgrade.
func (that *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/ws", that.serveWS)

	return router
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}

		that.hub.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) checkOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")

	return that.allowedOrigin == "" || origin == "" || origin == that.allowedOrigin
}

// serveWS upgrades the request and serves the connection until it closes.
func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err, "origin", req.Header.Get("Origin"))
		return
	}

	ctx := context.WithoutCancel(req.Context())
	conn := newConnection(uuid.NewString(), ws, that.hub.sendBuffer, that.logger)

	that.hub.register(conn)
	that.game.Connect(ctx, conn.id)

	go conn.writePump()

	conn.readPump(func(data []byte) {
		that.dispatch(ctx, conn.id, data)
	})

	if err = that.game.Disconnect(ctx, conn.id); err != nil {
		log.Error("failed to disconnect player", "playerID", conn.id, "error", err)
	}

	that.hub.unregister(conn)
}

func (that *Server) dispatch(ctx context.Context, playerID string, data []byte) {
	log := that.logger.With("method", "dispatch", "playerID", playerID)

	msg, err := decodeMessage(data)
	if err != nil {
		log.Warn("malformed message skipped", "error", err)
		return
	}

	log = log.With("action", msg.Action)

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Warn("unknown action skipped")
		return
	}

	if err = handler(ctx, playerID, msg); err != nil {
		if apperror.IsDropped(err) {
			log.Debug("message dropped", "reason", err)
			return
		}

		log.Error("error processing message", "error", err)
	}
}
