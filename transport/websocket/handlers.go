package websocket

import (
	"context"
	"fmt"
)

func (that *Server) handleRequestToPlay(ctx context.Context, playerID string, msg *Message) error {
	name, err := decodePlayerName(msg.Payload)
	if err != nil {
		return err
	}

	if err = that.game.RequestToPlay(ctx, playerID, name); err != nil {
		return fmt.Errorf("failed to request to play: %w", err)
	}

	return nil
}

func (that *Server) handlePlayerMove(ctx context.Context, playerID string, msg *Message) error {
	state, err := decodeMove(msg.Payload)
	if err != nil {
		return err
	}

	if err = that.game.MakeMove(ctx, playerID, state.ID, state.Sign); err != nil {
		return fmt.Errorf("failed to make move %d: %w", state.ID, err)
	}

	return nil
}

func (that *Server) handlePlayerName(ctx context.Context, playerID string, msg *Message) error {
	name, err := decodePlayerName(msg.Payload)
	if err != nil {
		return err
	}

	if err = that.game.SetName(ctx, playerID, name); err != nil {
		return fmt.Errorf("failed to set name: %w", err)
	}

	return nil
}
