// Package rspamd_filter provides the symbol scoring and action selection
// core of the Rspamd content filtering pipeline: analyzers insert weighted
// symbol hits on a per-message task, the core accumulates them under group
// caps and growth factors, and the action selector maps the final score to
// a terminal action.
//
// Example usage:
//
//	cfg := config.NewConfig().
//		WithAction(config.ActionReject, 15.0).
//		WithAction(config.ActionGreylist, 4.0)
//
//	task := filter.NewTaskFromMessage(cfg, emailBytes)
//	defer task.Close()
//
//	filter.InsertResult(task, "SPAM_PATTERN", 1.0, "matched", 0)
//	action := filter.CheckActionMetric(task, task.Result)
//
//	fmt.Printf("Action: %s, Score: %.2f\n", action, task.Result.Score)
package rspamd_filter

import (
	"github.com/rspamd/rspamd-filter-go/config"
	"github.com/rspamd/rspamd-filter-go/filter"
	"github.com/rspamd/rspamd-filter-go/protocol"
	"github.com/rspamd/rspamd-filter-go/symbols"
)

// Re-export commonly used types
type (
	Config            = config.Config
	Action            = config.Action
	Task              = filter.Task
	Settings          = filter.Settings
	SettingsMap       = filter.SettingsMap
	MetricResult      = filter.MetricResult
	SymbolResult      = filter.SymbolResult
	PassthroughResult = filter.PassthroughResult
	InsertFlag        = filter.InsertFlag
	Symbol            = symbols.Symbol
	Group             = symbols.Group
	Registry          = symbols.Registry
	RspamdScanReply   = protocol.RspamdScanReply
)

// Re-export constructors
var (
	NewConfig   = config.NewConfig
	LoadConfig  = config.Load
	ParseConfig = config.Parse
	NewRegistry = symbols.NewRegistry
	NewCache    = symbols.NewCache
	NewTask     = filter.NewTask
)

// Re-export actions
const (
	ActionReject         = config.ActionReject
	ActionSoftReject     = config.ActionSoftReject
	ActionRewriteSubject = config.ActionRewriteSubject
	ActionAddHeader      = config.ActionAddHeader
	ActionGreylist       = config.ActionGreylist
	ActionNoAction       = config.ActionNoAction
)

// Re-export insertion flags
const (
	InsertSingle  = filter.InsertSingle
	InsertEnforce = filter.InsertEnforce
)

// CreateMetricResult returns the task metric result, creating it on first use
func CreateMetricResult(task *Task) *MetricResult {
	return filter.CreateMetricResult(task)
}

// InsertResult records a symbol hit on the task metric result
func InsertResult(task *Task, symbol string, weight float64, opt string, flags InsertFlag) *SymbolResult {
	return filter.InsertResult(task, symbol, weight, opt, flags)
}

// AddPassthroughResult registers an action override on the task
func AddPassthroughResult(task *Task, action Action, priority int, targetScore float64, message, module string) {
	filter.AddPassthroughResult(task, action, priority, targetScore, message, module)
}

// FindSymbolResult returns the result for a symbol name, nil when absent
func FindSymbolResult(task *Task, name string) *SymbolResult {
	return filter.FindSymbolResult(task, name)
}

// SymbolResultForeach visits every symbol result exactly once
func SymbolResultForeach(task *Task, fn func(name string, s *SymbolResult)) {
	filter.SymbolResultForeach(task, fn)
}

// CheckActionMetric reconciles score and pass-throughs into an action
func CheckActionMetric(task *Task, metricRes *MetricResult) Action {
	return filter.CheckActionMetric(task, metricRes)
}

// AddResultOption records an option string on a symbol result
func AddResultOption(task *Task, s *SymbolResult, val string) bool {
	return filter.AddResultOption(task, s, val)
}
