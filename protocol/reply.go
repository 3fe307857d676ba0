// Package protocol renders scan replies in the Rspamd wire format
package protocol

import (
	"math"

	"github.com/rspamd/rspamd-filter-go/config"
	"github.com/rspamd/rspamd-filter-go/filter"
)

// RspamdScanReply represents the response to a scan request
type RspamdScanReply struct {
	// If message has been skipped
	IsSkipped bool `json:"is_skipped,omitempty"`
	// Scan score
	Score float64 `json:"score,omitempty"`
	// Required score (legacy)
	RequiredScore float64 `json:"required_score,omitempty"`
	// Action to take
	Action string `json:"action,omitempty"`
	// Action thresholds
	Thresholds map[string]float64 `json:"thresholds,omitempty"`
	// Symbols detected
	Symbols map[string]Symbol `json:"symbols,omitempty"`
	// Messages
	Messages map[string]string `json:"messages,omitempty"`
	// Message id
	MessageID string `json:"message-id,omitempty"`
	// Real time of scan
	TimeReal float64 `json:"time_real,omitempty"`
	// Milter actions block
	Milter *Milter `json:"milter,omitempty"`
	// Scan time
	ScanTime float64 `json:"scan_time,omitempty"`
}

// Symbol structure
type Symbol struct {
	Name        string    `json:"name,omitempty"`
	Score       float64   `json:"score,omitempty"`
	MetricScore float64   `json:"metric_score,omitempty"`
	Description *string   `json:"description,omitempty"`
	Options     *[]string `json:"options,omitempty"`
}

// Milter actions block
type Milter struct {
	AddHeaders    map[string]MailHeader `json:"add_headers,omitempty"`
	RemoveHeaders map[string]int        `json:"remove_headers,omitempty"`
}

// MailHeader represents a milter header action
type MailHeader struct {
	Value string `json:"value,omitempty"`
	Order int    `json:"order,omitempty"`
}

// BuildScanReply renders a task metric result into the wire reply. The
// required score is the reject threshold when configured; thresholds map
// every enabled action to its configured score.
func BuildScanReply(task *filter.Task, metricRes *filter.MetricResult, action filter.Action, scanTime float64) *RspamdScanReply {
	reply := &RspamdScanReply{
		Score:     metricRes.Score,
		Action:    action.String(),
		MessageID: task.MessageID,
		ScanTime:  scanTime,
		TimeReal:  scanTime,
	}

	if reject := metricRes.ActionsLimits[config.ActionReject]; !math.IsNaN(reject) {
		reply.RequiredScore = reject
	}

	thresholds := make(map[string]float64)
	for a := config.ActionReject; a <= config.ActionNoAction; a++ {
		if limit := metricRes.ActionsLimits[a]; !math.IsNaN(limit) {
			thresholds[a.String()] = limit
		}
	}
	if len(thresholds) > 0 {
		reply.Thresholds = thresholds
	}

	syms := make(map[string]Symbol, len(metricRes.Symbols))
	filter.SymbolResultForeach(task, func(name string, s *filter.SymbolResult) {
		sym := Symbol{
			Name:  name,
			Score: s.Score,
		}
		if s.Sym != nil {
			sym.MetricScore = s.Sym.StaticWeight()
			if s.Sym.Description != "" {
				desc := s.Sym.Description
				sym.Description = &desc
			}
		}
		if len(s.OptsHead) > 0 {
			opts := make([]string, 0, len(s.OptsHead))
			for _, o := range s.OptsHead {
				opts = append(opts, o.Option)
			}
			sym.Options = &opts
		}
		syms[name] = sym
	})
	if len(syms) > 0 {
		reply.Symbols = syms
	}

	if len(metricRes.Passthrough) > 0 {
		pr := metricRes.Passthrough[0]
		if pr.Message != "" {
			reply.Messages = map[string]string{pr.Module: pr.Message}
		}
	}

	if action == config.ActionAddHeader {
		reply.Milter = &Milter{
			AddHeaders: map[string]MailHeader{
				"X-Spam": {Value: "yes", Order: 1},
			},
		}
	}

	return reply
}
