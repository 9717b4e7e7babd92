package repository

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

// PlayerDirectory keeps connected players in insertion order.
type PlayerDirectory struct {
	mu      sync.RWMutex
	players map[string]*entity.Player
	order   []string
}

func NewPlayerDirectory() *PlayerDirectory {
	return &PlayerDirectory{
		players: make(map[string]*entity.Player),
	}
}

// Register adds an online, idle player with an empty name.
func (that *PlayerDirectory) Register(id string) *entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := entity.NewPlayer(id)

	if _, exists := that.players[id]; !exists {
		that.order = append(that.order, id)
	}
	that.players[id] = player

	return clonePlayer(player)
}

func (that *PlayerDirectory) SetName(id, name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[id]
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, id)
	}

	player.Name = name

	return nil
}

func (that *PlayerDirectory) GetByID(id string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, id)
	}

	return clonePlayer(player), nil
}

// Update replaces a registered player's state.
func (that *PlayerDirectory) Update(player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.players[player.ID]; !ok {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, player.ID)
	}

	that.players[player.ID] = clonePlayer(player)

	return nil
}

// FindIdleOpponent returns the first other player, in registration order, that is online and not playing.
func (that *PlayerDirectory) FindIdleOpponent(requesterID string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, id := range that.order {
		if id == requesterID {
			continue
		}

		if player := that.players[id]; player.IsIdle() {
			return clonePlayer(player), nil
		}
	}

	return nil, apperror.ErrNoIdleOpponent
}

func (that *PlayerDirectory) Remove(id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.players[id]; !ok {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, id)
	}

	delete(that.players, id)

	for i, existing := range that.order {
		if existing == id {
			that.order = append(that.order[:i], that.order[i+1:]...)
			break
		}
	}

	return nil
}

// Count returns how many players are online and how many of them are in a room.
func (that *PlayerDirectory) Count() (int, int) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var playing int
	for _, player := range that.players {
		if player.Playing {
			playing++
		}
	}

	return len(that.players), playing
}

func clonePlayer(player *entity.Player) *entity.Player {
	clone := *player
	return &clone
}
