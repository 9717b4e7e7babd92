package entity

// Inbound actions.
const (
	ActionRequestToPlay = "request_to_play"
	ActionPlayerMove    = "player-move-client"
	ActionPlayerName    = "playerName"
)

// Outbound events.
const (
	EventOpponentFound        = "opponent_found"
	EventOpponentNotFound     = "opponent_not_found"
	EventPlayerMove           = "player-move-server"
	EventGameOver             = "game-over"
	EventOpponentDisconnected = "opponent_disconnected"
)

const (
	WinnerDraw      = "draw"
	WinnerAbandoned = "abandoned"
)

type RequestToPlayPayload struct {
	PlayerName string `json:"playerName"`
}

type MoveState struct {
	ID   int    `json:"id"`
	Sign string `json:"sign"`
}

type PlayerMovePayload struct {
	State *MoveState `json:"state"`
}

type OpponentFoundPayload struct {
	OpponentName string `json:"opponentName"`
	PlayerSymbol Mark   `json:"playerSymbol"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
}

// EmptyPayload is sent with events that carry no data.
type EmptyPayload struct{}
