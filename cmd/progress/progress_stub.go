//go:build no_bubbletea

package progress

import (
	"context"
	"io"
)

// Tracker is a no-op when built without bubbletea.
type Tracker struct{}

func New(ctx context.Context, out io.Writer) *Tracker {
	return &Tracker{}
}

func (t *Tracker) OnStart(name string, total int64)   {}
func (t *Tracker) OnProgress(downloaded, total int64) {}
func (t *Tracker) OnDone(err error)                   {}
