package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNoIdleOpponent    = errors.New("no idle opponent")
	ErrNoOpponent        = errors.New("player has no opponent")
	ErrAlreadyPlaying    = errors.New("player is already playing")
	ErrSamePlayer        = errors.New("player can't play against itself")
)

// IsDropped reports whether err is an expected rejection that is dropped
// without telling the sender.
func IsDropped(err error) bool {
	for _, target := range []error{
		ErrGameFinished,
		ErrNotYourTurn,
		ErrCellOccupied,
		ErrInvalidCell,
		ErrRoomNotFound,
		ErrPlayerNotFound,
		ErrNoOpponent,
		ErrAlreadyPlaying,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
