package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

var ErrMissingMoveState = errors.New("move payload has no state")

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encodeMessage(action string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func decodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// decodePlayerName accepts either a bare JSON string or {"playerName": "..."}.
func decodePlayerName(payload json.RawMessage) (string, error) {
	if len(payload) == 0 {
		return "", nil
	}

	var name string
	if err := json.Unmarshal(payload, &name); err == nil {
		return name, nil
	}

	var req entity.RequestToPlayPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return "", fmt.Errorf("failed to unmarshal player name: %w", err)
	}

	return req.PlayerName, nil
}

func decodeMove(payload json.RawMessage) (*entity.MoveState, error) {
	var req entity.PlayerMovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal move: %w", err)
	}

	if req.State == nil {
		return nil, ErrMissingMoveState
	}

	return req.State, nil
}
