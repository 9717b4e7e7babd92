package entity

// Player is a connected client. ID is the connection handle.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Online     bool   `json:"online"`
	Playing    bool   `json:"playing"`
	OpponentID string `json:"opponent_id,omitempty"`
	Mark       Mark   `json:"mark,omitempty"`
}

func NewPlayer(id string) *Player {
	return &Player{
		ID:     id,
		Online: true,
	}
}

func (that *Player) IsIdle() bool {
	return that.Online && !that.Playing
}

// LeaveGame returns the player to the idle pool.
func (that *Player) LeaveGame() {
	that.Playing = false
	that.OpponentID = ""
	that.Mark = ""
}
