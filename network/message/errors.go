package message

import (
	"errors"
	"fmt"
)

// ErrUnknownDirection indicates that the direction tag of a received rpc
// envelope is not one of the defined values.
type ErrUnknownDirection struct {
	tag uint8
}

func (e ErrUnknownDirection) Error() string {
	return fmt.Sprintf("unknown rpc direction tag: %d", e.tag)
}

// NewUnknownDirectionErr returns a new ErrUnknownDirection.
func NewUnknownDirectionErr(tag uint8) ErrUnknownDirection {
	return ErrUnknownDirection{tag: tag}
}

// IsErrUnknownDirection returns whether an error is ErrUnknownDirection.
func IsErrUnknownDirection(err error) bool {
	var e ErrUnknownDirection
	return errors.As(err, &e)
}
