package core

import (
	"context"
	"math"
	"path/filepath"

	"github.com/vyomadl/vyoma-dl/course"
	"github.com/vyomadl/vyoma-dl/ledger"
	"github.com/vyomadl/vyoma-dl/pkg/enums/linktype"
)

type TypeStatus struct {
	Type       linktype.LinkType `json:"type" yaml:"type"`
	Total      int               `json:"total" yaml:"total"`
	Downloaded int               `json:"downloaded" yaml:"downloaded"`
	Percent    float64           `json:"percent" yaml:"percent"`
}

type StatusSummary struct {
	CourseID   string       `json:"course_id" yaml:"course_id"`
	Title      string       `json:"title" yaml:"title"`
	Teacher    string       `json:"teacher" yaml:"teacher"`
	Subscribed bool         `json:"subscribed" yaml:"subscribed"`
	Types      []TypeStatus `json:"types" yaml:"types"`
}

// Status reports per-type completion from the ledger merged with the links
// currently on the course page. It neither downloads nor subscribes, and it
// trusts the ledger without checking files on disk.
func (e *Executor) Status(ctx context.Context, c *course.Course) (*StatusSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := e.logger.With("course", c.ID)
	if !c.Subscribed() {
		log.Warn("Not subscribed to the course, links may be missing")
	}
	links, err := classifyCourse(c)
	if err != nil {
		return nil, err
	}
	led := ledger.Load(filepath.Join(c.Dir, ledger.FileName), log)
	led.Merge(links)

	counts := make(map[linktype.LinkType]*TypeStatus, len(linktype.Values()))
	summary := &StatusSummary{
		CourseID:   c.ID,
		Title:      c.Title,
		Teacher:    c.Teacher,
		Subscribed: c.Subscribed(),
		Types:      make([]TypeStatus, len(linktype.Values())),
	}
	for i, t := range linktype.Values() {
		summary.Types[i].Type = t
		counts[t] = &summary.Types[i]
	}
	for _, link := range led.Entries() {
		ts, ok := counts[link.Type]
		if !ok {
			continue
		}
		ts.Total++
		if link.Complete {
			ts.Downloaded++
		}
	}
	for i := range summary.Types {
		ts := &summary.Types[i]
		ts.Percent = percent(ts.Downloaded, ts.Total)
		log.Info(ts.Type.Title(), "downloaded", ts.Downloaded, "total", ts.Total, "percent", ts.Percent)
	}
	return summary, nil
}

func percent(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(10000*float64(done)/float64(total)) / 100
}
