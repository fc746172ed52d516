package dlutil

import "time"

func GetSpeed(downloaded int64, startTime time.Time) float64 {
	if startTime.IsZero() {
		return 0
	}
	elapsed := time.Since(startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(downloaded) / elapsed
}

var progressUpdatesLevels = []struct {
	size        int64 // size threshold
	stepPercent int   // report every n percent below the threshold
}{
	{1 << 20, 25},
	{10 << 20, 10},
	{100 << 20, 5},
	{500 << 20, 2},
}

// ShouldUpdateProgress reports whether a download at downloaded/total has
// moved far enough past lastPercent to be worth redrawing. Bigger files
// update in finer steps.
func ShouldUpdateProgress(total, downloaded int64, lastPercent int) bool {
	if total <= 0 || downloaded <= 0 {
		return false
	}
	percent := int((downloaded * 100) / total)
	if percent <= lastPercent {
		return false
	}
	if percent >= 100 {
		return true
	}
	step := 1
	for _, lvl := range progressUpdatesLevels {
		if total < lvl.size {
			step = lvl.stepPercent
			break
		}
	}
	return percent >= lastPercent+step
}
