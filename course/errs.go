package course

import "errors"

var (
	ErrInvalidIdentifier  = errors.New("invalid course identifier")
	ErrSubscriptionFailed = errors.New("course subscription failed")
)
