//go:build !no_bubbletea

package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/vyomadl/vyoma-dl/common/utils/dlutil"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

// bytesMsg reports the downloaded byte count.
type bytesMsg int64

type doneMsg struct{ err error }

type fileModel struct {
	bar        progress.Model
	name       string
	total      int64
	downloaded int64
	started    time.Time
	err        error
	done       bool
}

func newFileModel(name string, total int64) fileModel {
	return fileModel{
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		name:    name,
		total:   total,
		started: time.Now(),
	}
}

func (m fileModel) Init() tea.Cmd {
	return nil
}

func (m fileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-10, 80), 10)
		return m, nil

	case bytesMsg:
		m.downloaded = int64(msg)
		if m.total <= 0 {
			return m, nil
		}
		return m, m.bar.SetPercent(float64(m.downloaded) / float64(m.total))

	case doneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		if m.done {
			return m, nil
		}
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m fileModel) View() string {
	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(nameStyle.Render(m.name))
	sb.WriteString("\n  ")
	if m.total > 0 {
		sb.WriteString(fmt.Sprintf("%s / %s", humanize.IBytes(uint64(m.downloaded)), humanize.IBytes(uint64(m.total))))
	} else {
		sb.WriteString(humanize.IBytes(uint64(m.downloaded)))
	}
	speed := dlutil.GetSpeed(m.downloaded, m.started)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %s/s", humanize.IBytes(uint64(speed)))))
	sb.WriteString("\n")

	switch {
	case m.err != nil:
		sb.WriteString("  ")
		sb.WriteString(errStyle.Render("failed: " + m.err.Error()))
		sb.WriteString("\n")
	case m.total > 0:
		sb.WriteString("  ")
		if m.done {
			sb.WriteString(m.bar.ViewAs(1))
		} else {
			sb.WriteString(m.bar.View())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// unknownSizeStep is how many bytes must arrive between redraws when the
// server sent no length.
const unknownSizeStep = 1 << 20

// Tracker draws one progress bar per download on out. It runs a bubbletea
// program for the lifetime of each file.
type Tracker struct {
	ctx     context.Context
	out     io.Writer
	program *tea.Program

	total       int64
	lastPercent int
	lastBytes   int64
}

func New(ctx context.Context, out io.Writer) *Tracker {
	return &Tracker{ctx: ctx, out: out}
}

func (t *Tracker) OnStart(name string, total int64) {
	t.total = total
	t.lastPercent = 0
	t.lastBytes = 0
	t.program = tea.NewProgram(
		newFileModel(name, total),
		tea.WithoutSignalHandler(),
		tea.WithContext(t.ctx),
		tea.WithInput(nil),
		tea.WithOutput(t.out),
	)
	go t.program.Run()
}

func (t *Tracker) OnProgress(downloaded, total int64) {
	if t.program == nil {
		return
	}
	if total > 0 {
		if !dlutil.ShouldUpdateProgress(total, downloaded, t.lastPercent) {
			return
		}
		t.lastPercent = int(downloaded * 100 / total)
	} else {
		if downloaded-t.lastBytes < unknownSizeStep {
			return
		}
		t.lastBytes = downloaded
	}
	t.program.Send(bytesMsg(downloaded))
}

func (t *Tracker) OnDone(err error) {
	if t.program == nil {
		return
	}
	t.program.Send(doneMsg{err: err})
	t.program.Wait()
	t.program = nil
}
