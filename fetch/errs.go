package fetch

import "errors"

var (
	ErrTransfer  = errors.New("transfer failed")
	ErrBadStatus = errors.New("unexpected response status")
)
