package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/tictactoe"
)

const (
	DefaultPlayerName     = "Anonymous"
	DefaultMaxNameLength  = 32
	DefaultPublishTimeout = 2 * time.Second
)

type playerDirectory interface {
	Register(id string) *entity.Player
	SetName(id, name string) error
	GetByID(id string) (*entity.Player, error)
	Update(player *entity.Player) error
	FindIdleOpponent(requesterID string) (*entity.Player, error)
	Remove(id string) error
	Count() (int, int)
}

type roomRegistry interface {
	Create(playerX, playerO string) (*entity.Room, error)
	GetByID(id string) (*entity.Room, error)
	FindByPlayer(playerID string) (*entity.Room, error)
	ApplyMove(roomID string, cell int, mark entity.Mark) (entity.Board, error)
	MarkGameOver(roomID string) error
	Destroy(roomID string) error
	Count() int
	List() []*entity.Room
}

// Notifier delivers an event to one connected player without waiting for it to be sent.
type Notifier interface {
	Notify(playerID, event string, payload any)
}

// ResultPublisher announces finished games to external consumers.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result *entity.GameResult) error
}

type Options struct {
	MaxNameLength  int
	PublishTimeout time.Duration
}

// GameManager pairs players, relays moves and tears rooms down.
// Every event is handled to completion under one lock.
type GameManager struct {
	logger *slog.Logger

	mu        sync.Mutex
	players   playerDirectory
	rooms     roomRegistry
	notifier  Notifier
	publisher ResultPublisher

	maxNameLength  int
	publishTimeout time.Duration
	now            func() time.Time
}

// NewGameManager builds the coordinator. publisher may be nil when results are not announced.
func NewGameManager(
	logger *slog.Logger,
	players playerDirectory,
	rooms roomRegistry,
	notifier Notifier,
	publisher ResultPublisher,
	opts Options,
) *GameManager {
	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = DefaultMaxNameLength
	}

	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}

	return &GameManager{
		logger: logger.With("component", "game_manager"),

		players:   players,
		rooms:     rooms,
		notifier:  notifier,
		publisher: publisher,

		maxNameLength:  opts.MaxNameLength,
		publishTimeout: opts.PublishTimeout,
		now:            time.Now,
	}
}

// Connect registers a new connection as an idle player.
func (that *GameManager) Connect(_ context.Context, playerID string) *entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.players.Register(playerID)

	that.logger.Info("player connected", "playerID", playerID)

	return player
}

func (that *GameManager) SetName(_ context.Context, playerID, name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.players.SetName(playerID, that.normalizeName(name)); err != nil {
		return fmt.Errorf("failed to set player name: %w", err)
	}

	return nil
}

// RequestToPlay stores the player's name and pairs them with the first idle player, if any.
// The requester plays X.
func (that *GameManager) RequestToPlay(_ context.Context, playerID, name string) error {
	log := that.logger.With("method", "RequestToPlay", "playerID", playerID)

	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.players.GetByID(playerID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}

	// a blank name keeps the one set earlier with playerName
	if strings.TrimSpace(name) != "" || player.Name == "" {
		player.Name = that.normalizeName(name)
	}

	if err = that.players.Update(player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	// the player was matched by someone else's request before their own arrived
	if player.Playing {
		return fmt.Errorf("%w: %s", apperror.ErrAlreadyPlaying, playerID)
	}

	opponent, err := that.players.FindIdleOpponent(playerID)
	if errors.Is(err, apperror.ErrNoIdleOpponent) {
		that.notifier.Notify(playerID, entity.EventOpponentNotFound, entity.EmptyPayload{})

		log.Info("no opponent found, player is waiting")

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to find opponent: %w", err)
	}

	room, err := that.rooms.Create(player.ID, opponent.ID)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	player.Playing = true
	player.OpponentID = opponent.ID
	player.Mark = entity.MarkX

	opponent.Playing = true
	opponent.OpponentID = player.ID
	opponent.Mark = entity.MarkO

	for _, p := range []*entity.Player{player, opponent} {
		if err = that.players.Update(p); err != nil {
			return fmt.Errorf("failed to update player %s: %w", p.ID, err)
		}
	}

	that.notifier.Notify(player.ID, entity.EventOpponentFound, entity.OpponentFoundPayload{
		OpponentName: opponent.Name,
		PlayerSymbol: player.Mark,
	})
	that.notifier.Notify(opponent.ID, entity.EventOpponentFound, entity.OpponentFoundPayload{
		OpponentName: player.Name,
		PlayerSymbol: opponent.Mark,
	})

	log.Info("players paired", "roomID", room.ID, "opponentID", opponent.ID)

	return nil
}

// MakeMove validates a move against the room, relays it to both players and
// closes the room once the board is decided. Rejected moves are reported as
// errors only; nothing is sent back to the player.
func (that *GameManager) MakeMove(ctx context.Context, playerID string, cell int, sign string) error {
	result, err := that.makeMove(playerID, cell, sign)
	if err != nil {
		return err
	}

	if result != nil {
		that.publishResult(ctx, result)
	}

	return nil
}

func (that *GameManager) makeMove(playerID string, cell int, sign string) (*entity.GameResult, error) {
	log := that.logger.With("method", "MakeMove", "playerID", playerID)

	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.players.GetByID(playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if player.OpponentID == "" {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNoOpponent, playerID)
	}

	opponent, err := that.players.GetByID(player.OpponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get opponent: %w", err)
	}

	room, err := that.rooms.FindByPlayer(playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	if room.GameOver {
		return nil, fmt.Errorf("room %s: %w", room.ID, apperror.ErrGameFinished)
	}

	mark, err := entity.ParseMark(sign)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrNotYourTurn, err)
	}

	if assigned, _ := room.MarkOf(playerID); assigned != mark {
		return nil, fmt.Errorf("%w: player holds %s, sent %s", apperror.ErrNotYourTurn, assigned, mark)
	}

	board, err := that.rooms.ApplyMove(room.ID, cell, mark)
	if err != nil {
		return nil, fmt.Errorf("move rejected: %w", err)
	}

	move := entity.PlayerMovePayload{State: &entity.MoveState{ID: cell, Sign: mark.String()}}
	that.notifier.Notify(player.ID, entity.EventPlayerMove, move)
	that.notifier.Notify(opponent.ID, entity.EventPlayerMove, move)

	log = log.With("roomID", room.ID)

	outcome := tictactoe.Evaluate(board)
	if !outcome.IsDecided() {
		log.Debug("move relayed", "cell", cell, "mark", mark)
		return nil, nil
	}

	result, err := that.finishGame(room.ID, player, opponent, outcome.Winner())
	if err != nil {
		return nil, err
	}

	log.Info("game over", "winner", result.Winner, "moves", result.Moves)

	return result, nil
}

// finishGame announces the winner, frees both players and destroys the room.
func (that *GameManager) finishGame(roomID string, player, opponent *entity.Player, winner string) (*entity.GameResult, error) {
	if err := that.rooms.MarkGameOver(roomID); err != nil {
		return nil, fmt.Errorf("failed to finish room: %w", err)
	}

	room, err := that.rooms.GetByID(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get finished room: %w", err)
	}

	gameOver := entity.GameOverPayload{Winner: winner}
	that.notifier.Notify(player.ID, entity.EventGameOver, gameOver)
	that.notifier.Notify(opponent.ID, entity.EventGameOver, gameOver)

	for _, p := range []*entity.Player{player, opponent} {
		p.LeaveGame()
		if err = that.players.Update(p); err != nil {
			return nil, fmt.Errorf("failed to update player %s: %w", p.ID, err)
		}
	}

	if err = that.rooms.Destroy(roomID); err != nil {
		return nil, fmt.Errorf("failed to destroy room: %w", err)
	}

	return entity.NewGameResult(room, winner, that.now()), nil
}

// Disconnect notifies the opponent, destroys the player's room and forgets the player.
func (that *GameManager) Disconnect(ctx context.Context, playerID string) error {
	result, err := that.disconnect(playerID)
	if err != nil {
		return err
	}

	if result != nil {
		that.publishResult(ctx, result)
	}

	return nil
}

func (that *GameManager) disconnect(playerID string) (*entity.GameResult, error) {
	log := that.logger.With("method", "Disconnect", "playerID", playerID)

	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.players.GetByID(playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if player.OpponentID != "" {
		opponent, err := that.players.GetByID(player.OpponentID)
		if err != nil {
			log.Warn("opponent already gone", "opponentID", player.OpponentID, "error", err)
		} else {
			that.notifier.Notify(opponent.ID, entity.EventOpponentDisconnected, entity.EmptyPayload{})

			opponent.LeaveGame()
			if err = that.players.Update(opponent); err != nil {
				return nil, fmt.Errorf("failed to update opponent: %w", err)
			}
		}
	}

	var result *entity.GameResult

	room, err := that.rooms.FindByPlayer(playerID)
	switch {
	case err == nil:
		if !room.GameOver {
			result = entity.NewGameResult(room, entity.WinnerAbandoned, that.now())
		}

		if err = that.rooms.Destroy(room.ID); err != nil {
			return nil, fmt.Errorf("failed to destroy room: %w", err)
		}

		log.Info("room abandoned", "roomID", room.ID)
	case !errors.Is(err, apperror.ErrRoomNotFound):
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	if err = that.players.Remove(playerID); err != nil {
		return nil, fmt.Errorf("failed to remove player: %w", err)
	}

	log.Info("player disconnected")

	return result, nil
}

// Stats counts players and live rooms.
func (that *GameManager) Stats() entity.Stats {
	online, playing := that.players.Count()

	return entity.Stats{
		PlayersOnline:  online,
		PlayersPlaying: playing,
		Rooms:          that.rooms.Count(),
	}
}

func (that *GameManager) Rooms() []*entity.Room {
	return that.rooms.List()
}

// publishResult runs outside the lock and never fails the caller.
func (that *GameManager) publishResult(ctx context.Context, result *entity.GameResult) {
	if that.publisher == nil {
		return
	}

	log := that.logger.With("method", "publishResult", "roomID", result.RoomID)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), that.publishTimeout)
	defer cancel()

	if err := that.publisher.PublishResult(ctx, result); err != nil {
		log.Error("failed to publish game result", "error", err)
		return
	}

	log.Debug("game result published", "winner", result.Winner)
}

func (that *GameManager) normalizeName(name string) string {
	name = strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name))

	if name == "" {
		return DefaultPlayerName
	}

	if runes := []rune(name); len(runes) > that.maxNameLength {
		name = strings.TrimSpace(string(runes[:that.maxNameLength]))
	}

	return name
}
