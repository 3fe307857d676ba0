package filter

import (
	"math"

	"github.com/rspamd/rspamd-filter-go/config"
	"github.com/rspamd/rspamd-filter-go/symbols"
)

// SymbolOption is one recorded option string for a symbol hit
type SymbolOption struct {
	Option string
}

// SymbolResult represents the accumulated state of one symbol on a message
type SymbolResult struct {
	Name string
	// Sym is the borrowed definition reference, nil for dynamic symbols
	Sym   *symbols.Symbol
	Score float64
	// NShots counts hits of the symbol on this message; a repeat hit that
	// adds a new distinct option is not counted
	NShots int
	// Options maps distinct option strings, created lazily on first option
	Options map[string]*SymbolOption
	// OptsHead preserves option insertion order
	OptsHead []*SymbolOption
}

// MetricResult accumulates symbol scores for one message
type MetricResult struct {
	Symbols   map[string]*SymbolResult
	SymGroups map[*symbols.Group]float64
	Score     float64
	// GrowFactor is the multiplier applied to the next positive contribution
	GrowFactor    float64
	NPositive     int
	NNegative     int
	PositiveScore float64
	NegativeScore float64
	// ActionsLimits is the threshold ladder copied from the task config
	ActionsLimits [config.NActions]float64
	// Passthrough is kept sorted by descending priority
	Passthrough []*PassthroughResult
}

// CreateMetricResult returns the task metric result, creating it on first
// use. The symbol map is presized from the process-wide average symbol
// count; the threshold ladder is copied from the task config, or filled
// with NaN when the task has none. A pool destructor feeds the final
// symbol count back into the average and drops the interior maps.
func CreateMetricResult(task *Task) *MetricResult {
	if task.Result != nil {
		return task.Result
	}

	res := &MetricResult{
		Symbols:   make(map[string]*SymbolResult, symbolsSizeHint()),
		SymGroups: make(map[*symbols.Group]float64, 4),
	}

	if task.Cfg != nil {
		res.ActionsLimits = task.Cfg.Actions
	} else {
		for i := range res.ActionsLimits {
			res.ActionsLimits[i] = math.NaN()
		}
	}

	task.Pool.AddDestructor(func() {
		symbolsCount.Update(float64(len(res.Symbols)), 0.5)
		for _, s := range res.Symbols {
			s.Options = nil
			s.OptsHead = nil
		}
		res.Symbols = nil
		res.SymGroups = nil
	})

	task.Result = res

	return res
}

// FindSymbolResult returns the result for a symbol name, nil when the
// symbol has not fired on this message.
func FindSymbolResult(task *Task, name string) *SymbolResult {
	if task.Result == nil {
		return nil
	}
	return task.Result.Symbols[name]
}

// SymbolResultForeach visits every symbol result exactly once; the order
// is unspecified.
func SymbolResultForeach(task *Task, fn func(name string, s *SymbolResult)) {
	if fn == nil || task.Result == nil {
		return
	}
	for name, s := range task.Result.Symbols {
		fn(name, s)
	}
}

// AddResultOption records an option string on a symbol result. Duplicates
// are ignored, distinct options are capped by the configured default max
// shots, and one-param symbols keep only their first option. An empty
// option is accepted as a no-op.
func AddResultOption(task *Task, s *SymbolResult, val string) bool {
	if val == "" {
		return true
	}
	if s == nil {
		return false
	}

	if s.Options != nil {
		if s.Sym != nil && s.Sym.Flags&symbols.FlagOneParam != 0 {
			return false
		}
		if maxShots := defaultMaxShots(task); maxShots > 0 && len(s.Options) >= maxShots {
			return false
		}
		if _, ok := s.Options[val]; ok {
			return false
		}
	} else {
		s.Options = make(map[string]*SymbolOption)
	}

	opt := &SymbolOption{Option: val}
	s.Options[val] = opt
	s.OptsHead = append(s.OptsHead, opt)

	return true
}

func defaultMaxShots(task *Task) int {
	if task.Cfg != nil {
		return task.Cfg.DefaultMaxShots
	}
	return config.DefaultMaxShots
}
