package database

import (
	"time"

	"gorm.io/gorm"
)

// SyncRun is one recorded sync of a course.
type SyncRun struct {
	gorm.Model
	RunID      string `gorm:"uniqueIndex;not null"`
	CourseID   string `gorm:"index;not null"`
	Title      string
	Dir        string
	StartedAt  time.Time
	FinishedAt time.Time
	VideoLinks int
	NewLinks   int
	Canceled   bool
	Stats      []TypeStat
}

// TypeStat holds the counters of one link type within a run.
type TypeStat struct {
	gorm.Model
	SyncRunID       uint
	Type            string
	Total           int
	Downloaded      int
	AlreadyComplete int
	Skipped         int
}

func (r SyncRun) Downloaded() int {
	n := 0
	for _, s := range r.Stats {
		n += s.Downloaded
	}
	return n
}

func (r SyncRun) Skipped() int {
	n := 0
	for _, s := range r.Stats {
		n += s.Skipped
	}
	return n
}
