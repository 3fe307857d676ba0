package filter

import (
	"math"

	"go.uber.org/zap"

	"github.com/rspamd/rspamd-filter-go/symbols"
)

// InsertFlag alters insertion semantics for a single call
type InsertFlag uint32

const (
	// InsertSingle forces single-shot semantics for this call
	InsertSingle InsertFlag = 1 << iota
	// InsertEnforce scores unknown symbols with a static weight of 1.0
	// instead of discarding them
	InsertEnforce
)

// dblEpsilon is the deadband separating positive from negative scores
const dblEpsilon = 2.2204460492503131e-16

// InsertResult records a symbol hit on the task metric result and returns
// the affected symbol result. Insertions during the idempotent phase are
// refused and return nil. After a successful insertion the symbol cache
// frequency is bumped when the config carries a cache.
func InsertResult(task *Task, symbol string, weight float64, opt string, flags InsertFlag) *SymbolResult {
	if task.ProcessedStages&StageIdempotent != 0 {
		task.Logger().Error("cannot insert symbol on idempotent phase",
			zap.String("symbol", symbol))

		return nil
	}

	s := insertMetricResult(task, symbol, weight, opt, flags)

	if task.Cfg != nil && task.Cfg.Cache != nil {
		task.Cfg.Cache.IncFrequency(symbol)
	}

	return s
}

// checkGroupScore applies a group cap to a contribution: NaN when the cap
// is already exhausted, the truncated remainder when the contribution
// would overflow it, the contribution unchanged otherwise.
func checkGroupScore(task *Task, symbol string, gr *symbols.Group, groupScore, w float64) float64 {
	if gr != nil && gr.MaxScore > 0 && w > 0 {
		if groupScore >= gr.MaxScore {
			task.Logger().Info("maximum group score has been reached, ignoring symbol",
				zap.String("group", gr.Name),
				zap.Float64("max_score", gr.MaxScore),
				zap.String("symbol", symbol),
				zap.Float64("weight", w))
			return math.NaN()
		}
		if groupScore+w > gr.MaxScore {
			w = gr.MaxScore - groupScore
		}
	}

	return w
}

// applyGrowFactor adjusts a contribution by the accumulated grow factor
// and yields the factor to store on commit. Non-positive contributions
// pass through unchanged and reset the stored factor to neutral.
func applyGrowFactor(contribution, current, configured float64) (adjusted, next float64) {
	next = 1.0

	if current != 0 && contribution > 0 {
		adjusted = contribution * current
		next *= configured
	} else if contribution > 0 {
		adjusted = contribution
		next = configured
	} else {
		adjusted = contribution
	}

	return adjusted, next
}

func insertMetricResult(task *Task, symbol string, weight float64, opt string, flags InsertFlag) *SymbolResult {
	metricRes := CreateMetricResult(task)
	single := flags&InsertSingle != 0

	if !isFinite(weight) {
		kind := "infinity"
		if math.IsNaN(weight) {
			kind = "NaN"
		}
		task.Logger().Warn("detected non-finite score for symbol, replace it with zero",
			zap.String("kind", kind),
			zap.String("symbol", symbol))
		weight = 0.0
	}

	var sdef *symbols.Symbol
	if task.Cfg != nil && task.Cfg.Symbols != nil {
		sdef = task.Cfg.Symbols.Lookup(symbol)
	}

	var finalScore float64
	if sdef == nil {
		if flags&InsertEnforce != 0 {
			finalScore = 1.0 * weight
		} else {
			finalScore = 0.0
		}
	} else {
		finalScore = sdef.StaticWeight() * weight

		for _, gr := range sdef.Groups {
			if _, ok := metricRes.SymGroups[gr]; !ok {
				metricRes.SymGroups[gr] = 0
			}
		}
	}

	if task.Settings != nil {
		if corr, ok := task.Settings.Lookup(symbol); ok {
			task.Logger().Debug("settings: changed weight of symbol",
				zap.String("symbol", symbol),
				zap.Float64("from", finalScore),
				zap.Float64("to", corr))
			finalScore = corr * weight
		}
	}

	growFactor := 0.0
	if task.Cfg != nil {
		growFactor = task.Cfg.GrowFactor
	}

	s, ok := metricRes.Symbols[symbol]
	if ok {
		maxShots := 1
		if !single {
			if sdef != nil {
				maxShots = sdef.NShots
			} else {
				maxShots = defaultMaxShots(task)
			}
		}

		if !single && maxShots > 0 && s.NShots >= maxShots {
			single = true
		}

		// Check for duplicate options
		if opt != "" && s.Options != nil {
			if _, dup := s.Options[opt]; !dup {
				AddResultOption(task, s, opt)
			} else {
				s.NShots++
			}
		} else {
			s.NShots++
			AddResultOption(task, s, opt)
		}

		var diff float64
		if !single {
			diff = finalScore
		} else {
			if math.Abs(s.Score) < math.Abs(finalScore) &&
				math.Signbit(s.Score) == math.Signbit(finalScore) {
				// Replace less significant weight with a more significant one
				diff = finalScore - s.Score
			} else {
				diff = 0
			}
		}

		if diff != 0 {
			var nextGf float64
			diff, nextGf = applyGrowFactor(diff, metricRes.GrowFactor, growFactor)

			if sdef != nil {
				for _, gr := range sdef.Groups {
					grScore := metricRes.SymGroups[gr]
					curDiff := checkGroupScore(task, symbol, gr, grScore, diff)

					if math.IsNaN(curDiff) {
						// Limit reached, do not add result
						diff = math.NaN()
						break
					}
					metricRes.SymGroups[gr] = grScore + curDiff

					if curDiff < diff {
						// Reduce
						diff = curDiff
					}
				}
			}

			if !math.IsNaN(diff) {
				metricRes.Score += diff
				metricRes.GrowFactor = nextGf

				if single {
					s.Score = finalScore
				} else {
					s.Score += diff
				}
			}
		}
	} else {
		s = &SymbolResult{
			Name:   symbol,
			Sym:    sdef,
			NShots: 1,
		}
		metricRes.Symbols[symbol] = s

		var nextGf float64
		finalScore, nextGf = applyGrowFactor(finalScore, metricRes.GrowFactor, growFactor)

		if sdef != nil {
			// Check group limits
			for _, gr := range sdef.Groups {
				grScore := metricRes.SymGroups[gr]
				curScore := checkGroupScore(task, symbol, gr, grScore, finalScore)

				if math.IsNaN(curScore) {
					// Limit reached, do not add result
					finalScore = math.NaN()
					break
				}
				metricRes.SymGroups[gr] = grScore + curScore

				if curScore < finalScore {
					// Reduce
					finalScore = curScore
				}
			}
		}

		if !math.IsNaN(finalScore) {
			metricRes.Score += finalScore
			metricRes.GrowFactor = nextGf
			s.Score = finalScore

			if finalScore > dblEpsilon {
				metricRes.NPositive++
				metricRes.PositiveScore += finalScore
			} else if finalScore < -dblEpsilon {
				metricRes.NNegative++
				metricRes.NegativeScore += math.Abs(finalScore)
			}
		} else {
			s.Score = 0
		}

		AddResultOption(task, s, opt)
	}

	task.Logger().Debug("inserted symbol",
		zap.String("symbol", symbol),
		zap.Float64("score", s.Score),
		zap.Float64("factor", finalScore))

	return s
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
