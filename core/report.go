package core

import (
	"time"

	"github.com/vyomadl/vyoma-dl/pkg/enums/linktype"
)

// TypeReport counts what a sync did for one downloadable link type.
type TypeReport struct {
	Type            linktype.LinkType `json:"type" yaml:"type"`
	Total           int               `json:"total" yaml:"total"`
	Downloaded      int               `json:"downloaded" yaml:"downloaded"`
	AlreadyComplete int               `json:"already_complete" yaml:"already_complete"`
	Skipped         int               `json:"skipped" yaml:"skipped"`
	SkippedURLs     []string          `json:"skipped_urls,omitempty" yaml:"skipped_urls,omitempty"`
}

// Report is the outcome of one Sync call.
type Report struct {
	RunID      string       `json:"run_id" yaml:"run_id"`
	CourseID   string       `json:"course_id" yaml:"course_id"`
	Title      string       `json:"title" yaml:"title"`
	Dir        string       `json:"dir" yaml:"dir"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	VideoLinks int          `json:"video_links" yaml:"video_links"`
	NewLinks   int          `json:"new_links" yaml:"new_links"`
	Types      []TypeReport `json:"types" yaml:"types"`
	// Canceled is set when the context ended the run early.
	Canceled bool `json:"canceled" yaml:"canceled"`
}

func (r *Report) Type(t linktype.LinkType) (TypeReport, bool) {
	for _, tr := range r.Types {
		if tr.Type == t {
			return tr, true
		}
	}
	return TypeReport{}, false
}

func (r *Report) Downloaded() int {
	n := 0
	for _, tr := range r.Types {
		n += tr.Downloaded
	}
	return n
}

func (r *Report) Skipped() int {
	n := 0
	for _, tr := range r.Types {
		n += tr.Skipped
	}
	return n
}

// SkippedURLs returns the failed urls of every type in processing order.
func (r *Report) SkippedURLs() []string {
	var out []string
	for _, tr := range r.Types {
		out = append(out, tr.SkippedURLs...)
	}
	return out
}
