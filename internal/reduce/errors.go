package reduce

import (
	"errors"
	"fmt"
)

var (
	ErrNilClassifier = errors.New("nil classifier")
	ErrFinished      = errors.New("reducer already finished")
	ErrInvalidOption = errors.New("invalid reducer option")
)

// Error wraps reducer misuse with context.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func invalidOptionf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidOption, Msg: fmt.Sprintf(format, args...)}
}
