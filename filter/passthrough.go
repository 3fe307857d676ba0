package filter

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/rspamd/rspamd-filter-go/config"
)

// PassthroughResult is an explicit action override registered by a module,
// short-circuiting threshold based selection.
type PassthroughResult struct {
	Action   config.Action
	Priority int
	// TargetScore replaces the message score on selection, NaN leaves it
	TargetScore float64
	Message     string
	Module      string
}

// AddPassthroughResult registers an action override on the task metric
// result. The pass-through list stays sorted by descending priority;
// entries with equal priority keep insertion order.
func AddPassthroughResult(task *Task, action config.Action, priority int, targetScore float64, message, module string) {
	metricRes := CreateMetricResult(task)

	pr := &PassthroughResult{
		Action:      action,
		Priority:    priority,
		TargetScore: targetScore,
		Message:     message,
		Module:      module,
	}
	metricRes.Passthrough = append(metricRes.Passthrough, pr)
	sort.SliceStable(metricRes.Passthrough, func(i, j int) bool {
		return metricRes.Passthrough[i].Priority > metricRes.Passthrough[j].Priority
	})

	if !math.IsNaN(targetScore) {
		task.Logger().Info("set pre-result",
			zap.String("action", action.String()),
			zap.Float64("target_score", targetScore),
			zap.String("message", message),
			zap.String("module", module),
			zap.Int("priority", priority))
	} else {
		task.Logger().Info("set pre-result with no score",
			zap.String("action", action.String()),
			zap.String("message", message),
			zap.String("module", module),
			zap.Int("priority", priority))
	}
}
