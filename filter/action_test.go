package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rspamd/rspamd-filter-go/config"
)

func TestCheckActionThresholdLadder(t *testing.T) {
	cfg := config.NewConfig().
		WithAction(config.ActionReject, 15.0).
		WithAction(config.ActionAddHeader, 6.0).
		WithAction(config.ActionGreylist, 4.0)

	task := NewTask(cfg)
	res := CreateMetricResult(task)

	res.Score = 2.0
	assert.Equal(t, ActionNoAction, CheckActionMetric(task, res))

	res.Score = 5.0
	assert.Equal(t, ActionGreylist, CheckActionMetric(task, res))

	res.Score = 7.0
	assert.Equal(t, ActionAddHeader, CheckActionMetric(task, res))

	res.Score = 20.0
	assert.Equal(t, ActionReject, CheckActionMetric(task, res))
}

func TestCheckActionLargestThresholdWins(t *testing.T) {
	// A lower-severity action configured with a larger threshold must not
	// be shadowed by a smaller higher-severity one
	cfg := config.NewConfig().
		WithAction(config.ActionAddHeader, 6.0).
		WithAction(config.ActionGreylist, 8.0)

	task := NewTask(cfg)
	res := CreateMetricResult(task)
	res.Score = 9.0

	assert.Equal(t, ActionGreylist, CheckActionMetric(task, res))
}

func TestCheckActionAllDisabled(t *testing.T) {
	task := NewTask(config.NewConfig())
	res := CreateMetricResult(task)
	res.Score = 100.0

	assert.Equal(t, ActionNoAction, CheckActionMetric(task, res))
}

func TestPassthroughSortedByPriority(t *testing.T) {
	task := NewTask(config.NewConfig())

	AddPassthroughResult(task, ActionGreylist, 5, math.NaN(), "g", "mod1")
	AddPassthroughResult(task, ActionReject, 10, 20.0, "r", "mod2")
	AddPassthroughResult(task, ActionAddHeader, 10, math.NaN(), "h", "mod3")
	AddPassthroughResult(task, ActionNoAction, 1, math.NaN(), "n", "mod4")

	prs := task.Result.Passthrough
	require.Len(t, prs, 4)
	// Descending priority, ties keep insertion order
	assert.Equal(t, ActionReject, prs[0].Action)
	assert.Equal(t, ActionAddHeader, prs[1].Action)
	assert.Equal(t, ActionGreylist, prs[2].Action)
	assert.Equal(t, ActionNoAction, prs[3].Action)

	for i := 1; i < len(prs); i++ {
		assert.GreaterOrEqual(t, prs[i-1].Priority, prs[i].Priority)
	}
}

func TestPassthroughBeatsThreshold(t *testing.T) {
	cfg := config.NewConfig().WithAction(config.ActionReject, 15.0)

	task := NewTask(cfg)
	res := CreateMetricResult(task)
	res.Score = 5.0

	AddPassthroughResult(task, ActionReject, 10, 20.0, "banned", "policy")
	AddPassthroughResult(task, ActionGreylist, 5, math.NaN(), "grey", "other")

	action := CheckActionMetric(task, res)
	assert.Equal(t, ActionReject, action)
	assert.Equal(t, 20.0, res.Score)
}

func TestPassthroughNoActionClampsScore(t *testing.T) {
	task := NewTask(config.NewConfig())
	res := CreateMetricResult(task)
	res.Score = 5.0

	AddPassthroughResult(task, ActionNoAction, 10, 2.0, "whitelist", "policy")

	action := CheckActionMetric(task, res)
	assert.Equal(t, ActionNoAction, action)
	// Clamped down, never raised
	assert.Equal(t, 2.0, res.Score)
}

func TestPassthroughNoActionKeepsLowerScore(t *testing.T) {
	task := NewTask(config.NewConfig())
	res := CreateMetricResult(task)
	res.Score = 1.0

	AddPassthroughResult(task, ActionNoAction, 10, 5.0, "whitelist", "policy")

	CheckActionMetric(task, res)
	assert.Equal(t, 1.0, res.Score)
}

func TestPassthroughWithoutTargetKeepsScore(t *testing.T) {
	task := NewTask(config.NewConfig())
	res := CreateMetricResult(task)
	res.Score = 7.0

	AddPassthroughResult(task, ActionSoftReject, 3, math.NaN(), "ratelimit", "throttle")

	action := CheckActionMetric(task, res)
	assert.Equal(t, ActionSoftReject, action)
	assert.Equal(t, 7.0, res.Score)
}
