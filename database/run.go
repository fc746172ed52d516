package database

import (
	"context"

	"github.com/vyomadl/vyoma-dl/core"
	"gorm.io/gorm"
)

// SaveReport stores a sync report with its per-type counters.
func SaveReport(ctx context.Context, r *core.Report) error {
	if db == nil {
		return ErrNotInitialized
	}
	run := SyncRun{
		RunID:      r.RunID,
		CourseID:   r.CourseID,
		Title:      r.Title,
		Dir:        r.Dir,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		VideoLinks: r.VideoLinks,
		NewLinks:   r.NewLinks,
		Canceled:   r.Canceled,
	}
	for _, tr := range r.Types {
		run.Stats = append(run.Stats, TypeStat{
			Type:            tr.Type.String(),
			Total:           tr.Total,
			Downloaded:      tr.Downloaded,
			AlreadyComplete: tr.AlreadyComplete,
			Skipped:         tr.Skipped,
		})
	}
	return db.WithContext(ctx).Create(&run).Error
}

// GetRunsByCourse returns the newest runs of a course first. A limit of
// zero or less returns every run.
func GetRunsByCourse(ctx context.Context, courseID string, limit int) ([]SyncRun, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	var runs []SyncRun
	q := db.WithContext(ctx).
		Preload("Stats").
		Where("course_id = ?", courseID).
		Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&runs).Error
	return runs, err
}

func GetRunByRunID(ctx context.Context, runID string) (*SyncRun, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	var run SyncRun
	err := db.WithContext(ctx).
		Preload("Stats").
		Where("run_id = ?", runID).
		First(&run).Error
	return &run, err
}

func DeleteRunsByCourse(ctx context.Context, courseID string) error {
	if db == nil {
		return ErrNotInitialized
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&SyncRun{}).Where("course_id = ?", courseID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Unscoped().Where("sync_run_id IN ?", ids).Delete(&TypeStat{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id IN ?", ids).Delete(&SyncRun{}).Error
	})
}
