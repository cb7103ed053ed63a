// Package taskflow holds the pure task lifecycle rules: progress, blocking,
// the approval ledger and status derivation. Nothing here performs I/O; every
// value is recomputed from the task snapshot it is given.
package taskflow

import (
	"math"

	"interiorerp/internal/models"
)

// CalculateProgress maps a task to a 0–100 completion value.
// Explicit progress wins, then subtask ratio, then a status default.
func CalculateProgress(t *models.Task) int {
	if t == nil {
		return 0
	}
	if t.Progress != nil {
		return clamp(*t.Progress, 0, 100)
	}
	if total := len(t.SubTasks); total > 0 {
		done := completedSubTasks(t)
		return int(math.Round(100 * float64(done) / float64(total)))
	}
	switch t.Status {
	case models.StatusDone, models.StatusReview:
		return 100
	case models.StatusInProgress:
		return 50
	}
	return 0
}

func completedSubTasks(t *models.Task) int {
	n := 0
	for _, st := range t.SubTasks {
		if st.Completed {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
