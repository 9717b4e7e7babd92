package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository"
)

var errRedisDown = errors.New("redis down")

type sentEvent struct {
	PlayerID string
	Event    string
	Payload  any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (that *recordingNotifier) Notify(playerID, event string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, sentEvent{PlayerID: playerID, Event: event, Payload: payload})
}

// For returns the events delivered to one player.
func (that *recordingNotifier) For(playerID string) []sentEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	var events []sentEvent
	for _, event := range that.events {
		if event.PlayerID == playerID {
			events = append(events, event)
		}
	}
	return events
}

func (that *recordingNotifier) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = nil
}

type mockPublisher struct {
	mock.Mock
}

func (that *mockPublisher) PublishResult(ctx context.Context, result *entity.GameResult) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

type fixture struct {
	manager   *GameManager
	players   *repository.PlayerDirectory
	rooms     *repository.RoomRegistry
	notifier  *recordingNotifier
	publisher *mockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	players := repository.NewPlayerDirectory()
	rooms := repository.NewRoomRegistry()
	notifier := &recordingNotifier{}
	publisher := &mockPublisher{}

	t.Cleanup(func() { publisher.AssertExpectations(t) })

	return &fixture{
		manager:   NewGameManager(logger, players, rooms, notifier, publisher, Options{MaxNameLength: 8}),
		players:   players,
		rooms:     rooms,
		notifier:  notifier,
		publisher: publisher,
	}
}

// pair connects two players and pairs them; a plays X, b plays O.
func (that *fixture) pair(t *testing.T, a, b string) *entity.Room {
	t.Helper()

	ctx := context.Background()
	that.manager.Connect(ctx, a)
	that.manager.Connect(ctx, b)
	require.NoError(t, that.manager.SetName(ctx, b, b))
	require.NoError(t, that.manager.RequestToPlay(ctx, a, a))

	room, err := that.rooms.FindByPlayer(a)
	require.NoError(t, err)
	that.notifier.Reset()

	return room
}

func TestGameManager_RequestToPlay(t *testing.T) {
	ctx := context.Background()

	t.Run("Two connected players: the first caller gets X and the second O", func(t *testing.T) {
		// Given: two connected players
		f := newFixture(t)
		f.manager.Connect(ctx, "p1")
		f.manager.Connect(ctx, "p2")

		// When: p1 requests to play
		require.NoError(t, f.manager.RequestToPlay(ctx, "p1", "alice"))

		// Then: p1 is paired at once with the idle p2, p1 plays X and p2 plays O
		assert.Equal(t, []sentEvent{{
			PlayerID: "p1",
			Event:    entity.EventOpponentFound,
			Payload:  entity.OpponentFoundPayload{OpponentName: "", PlayerSymbol: entity.MarkX},
		}}, f.notifier.For("p1"))
		assert.Equal(t, []sentEvent{{
			PlayerID: "p2",
			Event:    entity.EventOpponentFound,
			Payload:  entity.OpponentFoundPayload{OpponentName: "alice", PlayerSymbol: entity.MarkO},
		}}, f.notifier.For("p2"))

		// When: p2's own request arrives afterwards
		f.notifier.Reset()
		err := f.manager.RequestToPlay(ctx, "p2", "bob")

		// Then: it is dropped but the name is kept
		require.ErrorIs(t, err, apperror.ErrAlreadyPlaying)
		assert.Empty(t, f.notifier.For("p2"))

		p2, err := f.players.GetByID("p2")
		require.NoError(t, err)
		assert.Equal(t, "bob", p2.Name)
		assert.Equal(t, entity.MarkO, p2.Mark)
	})

	t.Run("A lone requester waits and is matched by the next requester", func(t *testing.T) {
		// Given: a single connected player asking to play
		f := newFixture(t)
		f.manager.Connect(ctx, "p1")
		require.NoError(t, f.manager.RequestToPlay(ctx, "p1", "alice"))

		// Then: nobody else is around
		assert.Equal(t, []sentEvent{{
			PlayerID: "p1",
			Event:    entity.EventOpponentNotFound,
			Payload:  entity.EmptyPayload{},
		}}, f.notifier.For("p1"))
		f.notifier.Reset()

		// When: a second player connects and asks to play
		f.manager.Connect(ctx, "p2")
		require.NoError(t, f.manager.RequestToPlay(ctx, "p2", "bob"))

		// Then: the second caller is the requester of the room, so the room is p2 (X) vs p1 (O)
		room, err := f.rooms.FindByPlayer("p1")
		require.NoError(t, err)
		assert.Equal(t, "p2", room.PlayerX)
		assert.Equal(t, "p1", room.PlayerO)

		assert.Equal(t, []sentEvent{{
			PlayerID: "p2",
			Event:    entity.EventOpponentFound,
			Payload:  entity.OpponentFoundPayload{OpponentName: "alice", PlayerSymbol: entity.MarkX},
		}}, f.notifier.For("p2"))
		assert.Equal(t, []sentEvent{{
			PlayerID: "p1",
			Event:    entity.EventOpponentFound,
			Payload:  entity.OpponentFoundPayload{OpponentName: "bob", PlayerSymbol: entity.MarkO},
		}}, f.notifier.For("p1"))

		// And: both players are marked as playing against each other
		p1, err := f.players.GetByID("p1")
		require.NoError(t, err)
		p2, err := f.players.GetByID("p2")
		require.NoError(t, err)
		assert.True(t, p1.Playing)
		assert.True(t, p2.Playing)
		assert.Equal(t, "p2", p1.OpponentID)
		assert.Equal(t, "p1", p2.OpponentID)
	})

	t.Run("Third requester waits until a fourth arrives", func(t *testing.T) {
		// Given: two players already paired
		f := newFixture(t)
		f.pair(t, "p1", "p2")

		// When: a third player asks to play
		f.manager.Connect(ctx, "p3")
		require.NoError(t, f.manager.RequestToPlay(ctx, "p3", "carol"))

		// Then: no opponent is found
		require.Len(t, f.notifier.For("p3"), 1)
		assert.Equal(t, entity.EventOpponentNotFound, f.notifier.For("p3")[0].Event)
		assert.Empty(t, f.notifier.For("p1"))
		assert.Empty(t, f.notifier.For("p2"))

		// When: a fourth player asks to play
		f.notifier.Reset()
		f.manager.Connect(ctx, "p4")
		require.NoError(t, f.manager.RequestToPlay(ctx, "p4", "dave"))

		// Then: the third and fourth players are paired
		room, err := f.rooms.FindByPlayer("p3")
		require.NoError(t, err)
		assert.Equal(t, "p4", room.PlayerX)
		assert.Equal(t, "p3", room.PlayerO)
		assert.Equal(t, 2, f.rooms.Count())
	})

	t.Run("Names are trimmed, truncated and defaulted", func(t *testing.T) {
		f := newFixture(t)
		f.manager.Connect(ctx, "p1")
		f.manager.Connect(ctx, "p2")

		require.NoError(t, f.manager.SetName(ctx, "p2", "   "))
		require.NoError(t, f.manager.RequestToPlay(ctx, "p1", "  a-very-long-name \n"))

		p1, err := f.players.GetByID("p1")
		require.NoError(t, err)
		assert.Equal(t, "a-very-l", p1.Name)

		p2, err := f.players.GetByID("p2")
		require.NoError(t, err)
		assert.Equal(t, DefaultPlayerName, p2.Name)
	})

	t.Run("Blank request keeps the name set earlier", func(t *testing.T) {
		f := newFixture(t)
		f.manager.Connect(ctx, "p1")
		require.NoError(t, f.manager.SetName(ctx, "p1", "alice"))

		require.NoError(t, f.manager.RequestToPlay(ctx, "p1", ""))

		p1, err := f.players.GetByID("p1")
		require.NoError(t, err)
		assert.Equal(t, "alice", p1.Name)
	})

	t.Run("Request from a player already in a room is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.pair(t, "p1", "p2")

		err := f.manager.RequestToPlay(ctx, "p1", "again")

		require.ErrorIs(t, err, apperror.ErrAlreadyPlaying)
		assert.Empty(t, f.notifier.For("p1"))
		assert.Empty(t, f.notifier.For("p2"))
		assert.Equal(t, 1, f.rooms.Count())
	})

	t.Run("Unknown player", func(t *testing.T) {
		f := newFixture(t)

		err := f.manager.RequestToPlay(ctx, "ghost", "boo")

		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid move is broadcast to both players", func(t *testing.T) {
		// Given: p1 (X) and p2 (O) in a room
		f := newFixture(t)
		room := f.pair(t, "p1", "p2")

		// When: X plays cell 0
		require.NoError(t, f.manager.MakeMove(ctx, "p1", 0, "X"))

		// Then: both players receive the move
		expected := entity.PlayerMovePayload{State: &entity.MoveState{ID: 0, Sign: "X"}}
		for _, playerID := range []string{"p1", "p2"} {
			events := f.notifier.For(playerID)
			require.Len(t, events, 1)
			assert.Equal(t, entity.EventPlayerMove, events[0].Event)
			assert.Equal(t, expected, events[0].Payload)
		}

		// And: O moves next
		stored, err := f.rooms.GetByID(room.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.MarkO, stored.CurrentPlayer)
		assert.Equal(t, entity.Cell(entity.MarkX), stored.Board[0])
	})

	t.Run("Occupied cell is dropped silently", func(t *testing.T) {
		// Given: X holds cell 0
		f := newFixture(t)
		room := f.pair(t, "p1", "p2")
		require.NoError(t, f.manager.MakeMove(ctx, "p1", 0, "X"))
		f.notifier.Reset()

		before, err := f.rooms.GetByID(room.ID)
		require.NoError(t, err)

		// When: O plays the same cell
		err = f.manager.MakeMove(ctx, "p2", 0, "O")

		// Then: the move is rejected without any event and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.True(t, apperror.IsDropped(err))
		assert.Empty(t, f.notifier.For("p1"))
		assert.Empty(t, f.notifier.For("p2"))

		after, err := f.rooms.GetByID(room.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Wrong symbol is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.pair(t, "p1", "p2")

		err := f.manager.MakeMove(ctx, "p1", 0, "O")

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Empty(t, f.notifier.For("p1"))
	})

	t.Run("Out of turn is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.pair(t, "p1", "p2")

		err := f.manager.MakeMove(ctx, "p2", 4, "O")

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Empty(t, f.notifier.For("p2"))
	})

	t.Run("Garbage symbol is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.pair(t, "p1", "p2")

		err := f.manager.MakeMove(ctx, "p1", 4, "Z")

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		require.ErrorIs(t, err, entity.ErrInvalidMark)
	})

	t.Run("Move from a waiting player is dropped", func(t *testing.T) {
		f := newFixture(t)
		f.manager.Connect(ctx, "p1")
		require.NoError(t, f.manager.RequestToPlay(ctx, "p1", "alice"))

		err := f.manager.MakeMove(ctx, "p1", 0, "X")

		require.ErrorIs(t, err, apperror.ErrNoOpponent)
		assert.True(t, apperror.IsDropped(err))
	})

	t.Run("Winning move ends the game and destroys the room", func(t *testing.T) {
		// Given: X plays 0, O plays 1, X plays 4, O plays 2
		f := newFixture(t)
		room := f.pair(t, "p1", "p2")

		require.NoError(t, f.manager.MakeMove(ctx, "p1", 0, "X"))
		require.NoError(t, f.manager.MakeMove(ctx, "p2", 1, "O"))
		require.NoError(t, f.manager.MakeMove(ctx, "p1", 4, "X"))
		require.NoError(t, f.manager.MakeMove(ctx, "p2", 2, "O"))
		f.notifier.Reset()

		f.publisher.On("PublishResult", mock.Anything, mock.MatchedBy(func(result *entity.GameResult) bool {
			return result.RoomID == room.ID && result.Winner == "X" && result.Moves == 5
		})).Return(nil).Once()

		// When: X plays 8 and completes the diagonal
		require.NoError(t, f.manager.MakeMove(ctx, "p1", 8, "X"))

		// Then: both players see the move followed by game-over for X
		for _, playerID := range []string{"p1", "p2"} {
			events := f.notifier.For(playerID)
			require.Len(t, events, 2)
			assert.Equal(t, entity.EventPlayerMove, events[0].Event)
			assert.Equal(t, entity.EventGameOver, events[1].Event)
			assert.Equal(t, entity.GameOverPayload{Winner: "X"}, events[1].Payload)
		}

		// And: the room is gone and both players are idle again
		_, err := f.rooms.GetByID(room.ID)
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)

		for _, playerID := range []string{"p1", "p2"} {
			player, err := f.players.GetByID(playerID)
			require.NoError(t, err)
			assert.False(t, player.Playing)
			assert.Empty(t, player.OpponentID)
			assert.Empty(t, player.Mark)
		}

		// And: further moves are dropped
		err = f.manager.MakeMove(ctx, "p2", 3, "O")
		require.ErrorIs(t, err, apperror.ErrNoOpponent)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: a game heading for a draw
		f := newFixture(t)
		f.pair(t, "p1", "p2")

		f.publisher.On("PublishResult", mock.Anything, mock.MatchedBy(func(result *entity.GameResult) bool {
			return result.Winner == entity.WinnerDraw && result.Moves == 9
		})).Return(errRedisDown).Once()

		// X O X
		// X O O
		// O X X
		moves := []struct {
			player string
			cell   int
			sign   string
		}{
			{"p1", 0, "X"}, {"p2", 1, "O"}, {"p1", 2, "X"},
			{"p2", 4, "O"}, {"p1", 3, "X"}, {"p2", 5, "O"},
			{"p1", 7, "X"}, {"p2", 6, "O"}, {"p1", 8, "X"},
		}

		// When: every cell is filled
		for _, move := range moves {
			require.NoError(t, f.manager.MakeMove(ctx, move.player, move.cell, move.sign))
		}

		// Then: game-over carries draw even though publishing failed
		events := f.notifier.For("p2")
		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, entity.EventGameOver, last.Event)
		assert.Equal(t, entity.GameOverPayload{Winner: "draw"}, last.Payload)
		assert.Zero(t, f.rooms.Count())
	})
}

func TestGameManager_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("Opponent is notified exactly once and the room is destroyed", func(t *testing.T) {
		// Given: p1 and p2 mid-game
		f := newFixture(t)
		room := f.pair(t, "p1", "p2")
		require.NoError(t, f.manager.MakeMove(ctx, "p1", 0, "X"))
		f.notifier.Reset()

		f.publisher.On("PublishResult", mock.Anything, mock.MatchedBy(func(result *entity.GameResult) bool {
			return result.RoomID == room.ID && result.Winner == entity.WinnerAbandoned && result.Moves == 1
		})).Return(nil).Once()

		// When: p1 disconnects
		require.NoError(t, f.manager.Disconnect(ctx, "p1"))

		// Then: p2 receives one opponent_disconnected
		assert.Equal(t, []sentEvent{{
			PlayerID: "p2",
			Event:    entity.EventOpponentDisconnected,
			Payload:  entity.EmptyPayload{},
		}}, f.notifier.For("p2"))
		assert.Empty(t, f.notifier.For("p1"))

		// And: the room no longer resolves and p2 is idle
		_, err := f.rooms.GetByID(room.ID)
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		_, err = f.rooms.FindByPlayer("p2")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)

		p2, err := f.players.GetByID("p2")
		require.NoError(t, err)
		assert.False(t, p2.Playing)
		assert.Empty(t, p2.OpponentID)

		_, err = f.players.GetByID("p1")
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)

		// And: p2 can be matched again
		f.manager.Connect(ctx, "p3")
		require.NoError(t, f.manager.RequestToPlay(ctx, "p3", "carol"))
		room, err = f.rooms.FindByPlayer("p2")
		require.NoError(t, err)
		assert.Equal(t, "p3", room.PlayerX)
	})

	t.Run("Waiting player is simply removed", func(t *testing.T) {
		f := newFixture(t)
		f.manager.Connect(ctx, "p1")
		require.NoError(t, f.manager.RequestToPlay(ctx, "p1", "alice"))
		f.notifier.Reset()

		require.NoError(t, f.manager.Disconnect(ctx, "p1"))

		assert.Empty(t, f.notifier.events)
		online, _ := f.players.Count()
		assert.Zero(t, online)
	})

	t.Run("Unknown player", func(t *testing.T) {
		f := newFixture(t)

		err := f.manager.Disconnect(ctx, "ghost")

		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
	})
}

func TestGameManager_Stats(t *testing.T) {
	f := newFixture(t)
	f.pair(t, "p1", "p2")
	f.manager.Connect(context.Background(), "p3")

	assert.Equal(t, entity.Stats{PlayersOnline: 3, PlayersPlaying: 2, Rooms: 1}, f.manager.Stats())
	require.Len(t, f.manager.Rooms(), 1)
}
