package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
)

// Room is the authoritative state of one match.
type Room struct {
	ID            string    `json:"id"`
	PlayerX       string    `json:"player_x"`
	PlayerO       string    `json:"player_o"`
	Board         Board     `json:"board"`
	CurrentPlayer Mark      `json:"current_player"`
	GameOver      bool      `json:"game_over"`
	Moves         int       `json:"moves"`
	CreatedAt     time.Time `json:"created_at"`
}

// RoomID derives the room identity from both participants.
func RoomID(playerX, playerO string) string {
	return playerX + playerO
}

func NewRoom(playerX, playerO string, createdAt time.Time) *Room {
	return &Room{
		ID:            RoomID(playerX, playerO),
		PlayerX:       playerX,
		PlayerO:       playerO,
		Board:         NewBoard(),
		CurrentPlayer: MarkX,
		CreatedAt:     createdAt,
	}
}

func (that *Room) HasPlayer(playerID string) bool {
	return that.PlayerX == playerID || that.PlayerO == playerID
}

// MarkOf returns the symbol assigned to a participant.
func (that *Room) MarkOf(playerID string) (Mark, bool) {
	switch playerID {
	case that.PlayerX:
		return MarkX, true
	case that.PlayerO:
		return MarkO, true
	default:
		return "", false
	}
}

func (that *Room) Participants() [2]string {
	return [2]string{that.PlayerX, that.PlayerO}
}

// ApplyMove claims a cell for mark. The board is left untouched on error.
func (that *Room) ApplyMove(cell int, mark Mark) error {
	if that.GameOver {
		return apperror.ErrGameFinished
	}

	if !IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !that.Board.IsUntaken(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	if mark != that.CurrentPlayer {
		return fmt.Errorf("%w: %s moves next", apperror.ErrNotYourTurn, that.CurrentPlayer)
	}

	that.Board[cell] = Cell(mark)
	that.CurrentPlayer = mark.Opposite()
	that.Moves++

	return nil
}

func (that *Room) Snapshot() *Room {
	snapshot := *that
	return &snapshot
}
