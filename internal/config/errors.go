package config

import (
	"errors"
	"fmt"
)

// ErrInvalid matches every *Error.
var ErrInvalid = errors.New("invalid configuration")

// Error is a startup configuration failure. Hint lists remediation steps
// shown to the user before the process exits.
type Error struct {
	Field string
	Msg   string
	Hint  []string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Is lets errors.Is(err, ErrInvalid) match.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}
