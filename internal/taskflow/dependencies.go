package taskflow

import (
	"errors"
	"fmt"

	"interiorerp/internal/models"
)

var (
	ErrDependencyCycle   = errors.New("dependency cycle")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrSelfDependency    = errors.New("task cannot depend on itself")
)

// IsBlocked reports whether work on t cannot proceed: frozen tasks are always
// blocked, otherwise any referenced dependency that is not DONE blocks.
// Dependency ids missing from tasks are ignored.
func IsBlocked(t *models.Task, tasks []models.Task) bool {
	if t == nil {
		return false
	}
	if t.Status.IsFrozen() {
		return true
	}
	return len(BlockingTasks(t, tasks)) > 0
}

// BlockingTasks returns the dependencies of t that are not yet DONE, in the
// order they appear in t.Dependencies.
func BlockingTasks(t *models.Task, tasks []models.Task) []models.Task {
	if t == nil || len(t.Dependencies) == 0 {
		return nil
	}
	byID := indexTasks(tasks)
	var out []models.Task
	for _, id := range t.Dependencies {
		dep, ok := byID[id]
		if !ok {
			continue
		}
		if dep.Status != models.StatusDone {
			out = append(out, *dep)
		}
	}
	return out
}

// ValidateDependencies checks a proposed dependency list for taskID against the
// project's task set. It rejects self-references, ids outside the project and
// edges that would close a cycle.
func ValidateDependencies(taskID string, deps []string, tasks []models.Task) error {
	byID := indexTasks(tasks)
	for _, id := range deps {
		if id == taskID {
			return ErrSelfDependency
		}
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDependency, id)
		}
	}

	edges := make(map[string][]string, len(tasks)+1)
	for i := range tasks {
		if tasks[i].ID == taskID {
			continue
		}
		edges[tasks[i].ID] = tasks[i].Dependencies
	}
	edges[taskID] = deps

	// a cycle through taskID exists iff taskID is reachable from one of deps
	seen := map[string]bool{}
	stack := append([]string(nil), deps...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == taskID {
			return ErrDependencyCycle
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, edges[id]...)
	}
	return nil
}

func indexTasks(tasks []models.Task) map[string]*models.Task {
	byID := make(map[string]*models.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	return byID
}
