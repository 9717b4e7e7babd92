package tictactoe

import "github.com/rocketscienceinc/tictactoe-relay/internal/entity"

// Outcome is the result of evaluating a board.
type Outcome int

const (
	OutcomeUndecided Outcome = iota
	OutcomeXWins
	OutcomeOWins
	OutcomeDraw
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate checks every line for three identical marks, then falls back to draw
// when no untaken cell remains.
func Evaluate(board entity.Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]

		mark, ok := a.Mark()
		if !ok || a != b || b != c {
			continue
		}

		if mark == entity.MarkX {
			return OutcomeXWins
		}
		return OutcomeOWins
	}

	if board.IsFull() {
		return OutcomeDraw
	}

	return OutcomeUndecided
}

func (that Outcome) IsDecided() bool {
	return that != OutcomeUndecided
}

// Winner renders the outcome the way the game-over event reports it.
func (that Outcome) Winner() string {
	switch that {
	case OutcomeXWins:
		return entity.MarkX.String()
	case OutcomeOWins:
		return entity.MarkO.String()
	case OutcomeDraw:
		return entity.WinnerDraw
	default:
		return ""
	}
}

func (that Outcome) String() string {
	switch that {
	case OutcomeXWins:
		return "x-wins"
	case OutcomeOWins:
		return "o-wins"
	case OutcomeDraw:
		return "draw"
	default:
		return "undecided"
	}
}
