package entity

import (
	"errors"
	"fmt"
)

// Mark is the symbol a player places in a cell.
type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"
)

var ErrInvalidMark = errors.New("invalid mark")

// ParseMark accepts only "X" and "O".
func ParseMark(value string) (Mark, error) {
	switch mark := Mark(value); mark {
	case MarkX, MarkO:
		return mark, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMark, value)
	}
}

func (that Mark) Opposite() Mark {
	if that == MarkX {
		return MarkO
	}
	return MarkX
}

func (that Mark) IsValid() bool {
	return that == MarkX || that == MarkO
}

func (that Mark) String() string {
	return string(that)
}
