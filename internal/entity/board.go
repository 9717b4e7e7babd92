package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	BoardSide = 3
	BoardSize = BoardSide * BoardSide
)

// Cell holds either its untaken sentinel (the 1-based position) or a Mark.
type Cell string

// Untaken returns the sentinel of the cell at index.
func Untaken(index int) Cell {
	return Cell(strconv.Itoa(index + 1))
}

// Mark reports the mark stored in the cell, if any.
func (that Cell) Mark() (Mark, bool) {
	mark := Mark(that)
	return mark, mark.IsValid()
}

// MarshalJSON encodes a sentinel as a number and a mark as a string.
func (that Cell) MarshalJSON() ([]byte, error) {
	if mark, ok := that.Mark(); ok {
		return json.Marshal(string(mark))
	}

	position, err := strconv.Atoi(string(that))
	if err != nil {
		return nil, fmt.Errorf("failed to encode cell %q: %w", string(that), err)
	}

	return json.Marshal(position)
}

func (that *Cell) UnmarshalJSON(data []byte) error {
	var mark string
	if err := json.Unmarshal(data, &mark); err == nil {
		parsed, err := ParseMark(mark)
		if err != nil {
			return err
		}
		*that = Cell(parsed)
		return nil
	}

	var position int
	if err := json.Unmarshal(data, &position); err != nil {
		return fmt.Errorf("failed to decode cell: %w", err)
	}

	if position < 1 || position > BoardSize {
		return fmt.Errorf("cell position out of range: %d", position)
	}

	*that = Untaken(position - 1)

	return nil
}

// Board is a 3x3 grid stored row-major.
type Board [BoardSize]Cell

func NewBoard() Board {
	var board Board
	for i := range board {
		board[i] = Untaken(i)
	}
	return board
}

// IsUntaken reports whether the cell still holds its own sentinel.
func (that Board) IsUntaken(index int) bool {
	return that[index] == Untaken(index)
}

func (that Board) IsFull() bool {
	for i := range that {
		if that.IsUntaken(i) {
			return false
		}
	}
	return true
}

func (that Board) Rows() [BoardSide][BoardSide]Cell {
	var rows [BoardSide][BoardSide]Cell
	for i, cell := range that {
		row, col := RowCol(i)
		rows[row][col] = cell
	}
	return rows
}

func (that Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.Rows())
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var rows [BoardSide][BoardSide]Cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode board: %w", err)
	}

	for row := range rows {
		for col, cell := range rows[row] {
			that[row*BoardSide+col] = cell
		}
	}

	return nil
}

// RowCol maps a cell index onto its row and column.
func RowCol(index int) (int, int) {
	return index / BoardSide, index % BoardSide
}

func IsValidCell(index int) bool {
	return index >= 0 && index < BoardSize
}
