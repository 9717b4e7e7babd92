package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

// RoomRegistry owns every live room and its board.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
	order []string
	now   func() time.Time
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]*entity.Room),
		now:   time.Now,
	}
}

// Create opens a room where playerX (the requester) moves first.
func (that *RoomRegistry) Create(playerX, playerO string) (*entity.Room, error) {
	if playerX == playerO {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSamePlayer, playerX)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	room := entity.NewRoom(playerX, playerO, that.now())

	if _, exists := that.rooms[room.ID]; exists {
		return nil, fmt.Errorf("%w: room id %s", apperror.ErrGameAlreadyExists, room.ID)
	}

	that.rooms[room.ID] = room
	that.order = append(that.order, room.ID)

	return room.Snapshot(), nil
}

func (that *RoomRegistry) GetByID(id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	return room.Snapshot(), nil
}

// FindByPlayer scans live rooms for one containing playerID.
func (that *RoomRegistry) FindByPlayer(playerID string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, id := range that.order {
		if room := that.rooms[id]; room.HasPlayer(playerID) {
			return room.Snapshot(), nil
		}
	}

	return nil, fmt.Errorf("%w: player %s", apperror.ErrRoomNotFound, playerID)
}

// ApplyMove claims cell for mark and returns the updated board.
// A rejected move leaves the room untouched.
func (that *RoomRegistry) ApplyMove(roomID string, cell int, mark entity.Mark) (entity.Board, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return entity.Board{}, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	if err := room.ApplyMove(cell, mark); err != nil {
		return entity.Board{}, fmt.Errorf("failed to apply move in room %s: %w", roomID, err)
	}

	return room.Board, nil
}

func (that *RoomRegistry) MarkGameOver(roomID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	room.GameOver = true

	return nil
}

func (that *RoomRegistry) Destroy(roomID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[roomID]; !ok {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	delete(that.rooms, roomID)

	for i, existing := range that.order {
		if existing == roomID {
			that.order = append(that.order[:i], that.order[i+1:]...)
			break
		}
	}

	return nil
}

func (that *RoomRegistry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// List returns snapshots of live rooms, oldest first.
func (that *RoomRegistry) List() []*entity.Room {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*entity.Room, 0, len(that.order))
	for _, id := range that.order {
		rooms = append(rooms, that.rooms[id].Snapshot())
	}

	return rooms
}
