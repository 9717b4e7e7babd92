package entity

import "time"

// GameResult describes a finished or abandoned match.
type GameResult struct {
	RoomID     string    `json:"room_id"`
	PlayerX    string    `json:"player_x"`
	PlayerO    string    `json:"player_o"`
	Winner     string    `json:"winner"`
	Moves      int       `json:"moves"`
	Board      Board     `json:"board"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewGameResult(room *Room, winner string, finishedAt time.Time) *GameResult {
	return &GameResult{
		RoomID:     room.ID,
		PlayerX:    room.PlayerX,
		PlayerO:    room.PlayerO,
		Winner:     winner,
		Moves:      room.Moves,
		Board:      room.Board,
		FinishedAt: finishedAt,
	}
}
