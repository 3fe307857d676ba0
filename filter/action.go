package filter

import (
	"math"

	"github.com/rspamd/rspamd-filter-go/config"
)

// Action is the terminal verdict for a message
type Action = config.Action

// Re-exported action variants, ordered by severity
const (
	ActionReject         = config.ActionReject
	ActionSoftReject     = config.ActionSoftReject
	ActionRewriteSubject = config.ActionRewriteSubject
	ActionAddHeader      = config.ActionAddHeader
	ActionGreylist       = config.ActionGreylist
	ActionNoAction       = config.ActionNoAction
)

// CheckActionMetric reconciles the accumulated score against the threshold
// ladder and any registered pass-throughs into a terminal action.
//
// Without pass-throughs the selector picks the action whose finite
// threshold is exceeded and largest; the threshold value disambiguates, not
// the severity order, so a misconfigured lower-severity action with a
// larger threshold cannot be shadowed. With pass-throughs the highest
// priority entry wins unconditionally; a finite target score overwrites
// the message score, except for a no-action pass-through which only clamps
// it down.
func CheckActionMetric(task *Task, metricRes *MetricResult) Action {
	if len(metricRes.Passthrough) == 0 {
		selected := ActionNoAction
		maxScore := math.Inf(-1)

		for a := ActionReject; a < ActionNoAction; a++ {
			threshold := metricRes.ActionsLimits[a]
			if math.IsNaN(threshold) {
				continue
			}
			if metricRes.Score >= threshold && threshold > maxScore {
				selected = a
				maxScore = threshold
			}
		}

		return selected
	}

	// Peek the highest priority result
	pr := metricRes.Passthrough[0]
	if !math.IsNaN(pr.TargetScore) {
		if pr.Action == ActionNoAction {
			metricRes.Score = math.Min(pr.TargetScore, metricRes.Score)
		} else {
			metricRes.Score = pr.TargetScore
		}
	}

	return pr.Action
}
