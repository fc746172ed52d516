package core

import "errors"

var ErrNotSubscribed = errors.New("not subscribed to the course")
