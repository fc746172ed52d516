package session

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrAuthentication   = errors.New("authentication failed")
	ErrNoLoginToken     = fmt.Errorf("%w: login token not found on home page", ErrAuthentication)
	ErrBadStatus        = errors.New("unexpected response status")
)
