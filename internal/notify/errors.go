package notify

import "errors"

var (
	ErrUnknownTable = errors.New("notify: unknown table")
	ErrNilCallback  = errors.New("notify: nil callback")
)
