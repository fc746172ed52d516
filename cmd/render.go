package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/vyomadl/vyoma-dl/core"
	"github.com/vyomadl/vyoma-dl/database"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// encode writes v as json or yaml. ok is false for any other format.
func encode(w io.Writer, format string, v any) (ok bool, err error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = w.Write(b)
		return true, err
	}
	return false, nil
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q, want table, json or yaml", format)
}

func renderReport(w io.Writer, r *core.Report) {
	fmt.Fprintln(w, titleStyle.Render(r.Title))
	fmt.Fprintf(w, "Saved to %s\n", r.Dir)
	t := newTable("Type", "Links", "Downloaded", "Already done", "Skipped")
	for _, tr := range r.Types {
		t.Row(tr.Type.Title(),
			strconv.Itoa(tr.Total),
			strconv.Itoa(tr.Downloaded),
			strconv.Itoa(tr.AlreadyComplete),
			strconv.Itoa(tr.Skipped),
		)
	}
	fmt.Fprintln(w, t.String())
	if r.VideoLinks > 0 {
		fmt.Fprintf(w, "%d video links listed in video_links.txt\n", r.VideoLinks)
	}
	if skipped := r.SkippedURLs(); len(skipped) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d links failed and were recorded in skipped_links.txt:", len(skipped))))
		for _, u := range skipped {
			fmt.Fprintln(w, "  "+u)
		}
	}
	if r.Canceled {
		fmt.Fprintln(w, warnStyle.Render("Interrupted, run again to resume."))
	}
}

func renderStatus(w io.Writer, s *core.StatusSummary) {
	header := s.Title
	if s.Teacher != "" {
		header += " by " + s.Teacher
	}
	fmt.Fprintln(w, titleStyle.Render(header))
	if !s.Subscribed {
		fmt.Fprintln(w, warnStyle.Render("Not subscribed"))
	}
	t := newTable("Type", "Downloaded", "Total", "Percent")
	for _, ts := range s.Types {
		t.Row(ts.Type.Title(),
			strconv.Itoa(ts.Downloaded),
			strconv.Itoa(ts.Total),
			strconv.FormatFloat(ts.Percent, 'f', 2, 64)+"%",
		)
	}
	fmt.Fprintln(w, t.String())
}

type historyEntry struct {
	RunID      string `json:"run_id" yaml:"run_id"`
	StartedAt  string `json:"started_at" yaml:"started_at"`
	Duration   string `json:"duration" yaml:"duration"`
	NewLinks   int    `json:"new_links" yaml:"new_links"`
	Downloaded int    `json:"downloaded" yaml:"downloaded"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
	Canceled   bool   `json:"canceled" yaml:"canceled"`
}

func historyEntries(runs []database.SyncRun) []historyEntry {
	out := make([]historyEntry, 0, len(runs))
	for _, r := range runs {
		out = append(out, historyEntry{
			RunID:      r.RunID,
			StartedAt:  r.StartedAt.Format("2006-01-02 15:04:05"),
			Duration:   r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
			NewLinks:   r.NewLinks,
			Downloaded: r.Downloaded(),
			Skipped:    r.Skipped(),
			Canceled:   r.Canceled,
		})
	}
	return out
}

func renderHistory(w io.Writer, courseID string, runs []database.SyncRun) {
	if len(runs) == 0 {
		fmt.Fprintf(w, "No recorded runs for course %s\n", courseID)
		return
	}
	fmt.Fprintln(w, titleStyle.Render(runs[0].Title))
	t := newTable("Run", "Started", "New links", "Downloaded", "Skipped", "")
	for _, r := range runs {
		note := ""
		if r.Canceled {
			note = "interrupted"
		}
		t.Row(r.RunID,
			humanize.Time(r.StartedAt),
			strconv.Itoa(r.NewLinks),
			strconv.Itoa(r.Downloaded()),
			strconv.Itoa(r.Skipped()),
			note,
		)
	}
	fmt.Fprintln(w, t.String())
}

type runStat struct {
	Type            string `json:"type" yaml:"type"`
	Total           int    `json:"total" yaml:"total"`
	Downloaded      int    `json:"downloaded" yaml:"downloaded"`
	AlreadyComplete int    `json:"already_complete" yaml:"already_complete"`
	Skipped         int    `json:"skipped" yaml:"skipped"`
}

type runDetails struct {
	historyEntry `yaml:",inline"`
	CourseID     string    `json:"course_id" yaml:"course_id"`
	Title        string    `json:"title" yaml:"title"`
	Dir          string    `json:"dir" yaml:"dir"`
	VideoLinks   int       `json:"video_links" yaml:"video_links"`
	Stats        []runStat `json:"stats" yaml:"stats"`
}

func runDetail(r *database.SyncRun) runDetails {
	d := runDetails{
		historyEntry: historyEntries([]database.SyncRun{*r})[0],
		CourseID:     r.CourseID,
		Title:        r.Title,
		Dir:          r.Dir,
		VideoLinks:   r.VideoLinks,
	}
	for _, s := range r.Stats {
		d.Stats = append(d.Stats, runStat{
			Type:            s.Type,
			Total:           s.Total,
			Downloaded:      s.Downloaded,
			AlreadyComplete: s.AlreadyComplete,
			Skipped:         s.Skipped,
		})
	}
	return d
}

func renderRun(w io.Writer, r *database.SyncRun) {
	fmt.Fprintln(w, titleStyle.Render(r.Title))
	fmt.Fprintf(w, "Run %s started %s, took %s\n",
		r.RunID,
		r.StartedAt.Format("2006-01-02 15:04:05"),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
	)
	t := newTable("Type", "Links", "Downloaded", "Already done", "Skipped")
	for _, s := range r.Stats {
		t.Row(s.Type,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Downloaded),
			strconv.Itoa(s.AlreadyComplete),
			strconv.Itoa(s.Skipped),
		)
	}
	fmt.Fprintln(w, t.String())
	if r.VideoLinks > 0 {
		fmt.Fprintf(w, "%d video links\n", r.VideoLinks)
	}
	if r.Canceled {
		fmt.Fprintln(w, warnStyle.Render("Interrupted"))
	}
}
