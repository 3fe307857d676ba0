// Package filter implements the symbol scoring and action selection core:
// per-message metric results, the weight composition algorithm for symbol
// insertions, the pass-through override channel and the action selector.
package filter

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	base32 "github.com/vstakhov/go-base32"

	"github.com/rspamd/rspamd-filter-go/config"
)

// Task processing stages. Symbol insertion is refused once the idempotent
// stage has been reached.
const (
	StagePreFilters uint32 = 1 << iota
	StageFilters
	StagePostFilters
	StageIdempotent
	StageDone
)

// Settings provides per-message symbol score correctors
type Settings interface {
	// Lookup returns the corrector for a symbol name
	Lookup(name string) (float64, bool)
}

// SettingsMap is a map-backed Settings implementation
type SettingsMap map[string]float64

// Lookup implements Settings
func (m SettingsMap) Lookup(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

// Envelope carries the SMTP envelope data attached to a task
type Envelope struct {
	From     string
	Rcpt     []string
	IP       string
	User     string
	Helo     string
	Hostname string
}

// Pool is a task-scoped cleanup list standing in for the per-task memory
// pool of the scanner: destructors run in reverse registration order when
// the task is destroyed.
type Pool struct {
	dtors []func()
}

// AddDestructor registers a cleanup callback
func (p *Pool) AddDestructor(fn func()) {
	p.dtors = append(p.dtors, fn)
}

// Destroy runs all destructors in reverse order and clears the pool
func (p *Pool) Destroy() {
	for i := len(p.dtors) - 1; i >= 0; i-- {
		p.dtors[i]()
	}
	p.dtors = nil
}

// Task represents a single message being scored. All operations on a task
// are serialized by the caller.
type Task struct {
	Cfg             *config.Config
	Settings        Settings
	Envelope        *Envelope
	ProcessedStages uint32
	MessageID       string
	Result          *MetricResult
	Pool            *Pool

	logger *zap.Logger
}

// NewTask creates a task bound to a configuration
func NewTask(cfg *config.Config) *Task {
	return &Task{
		Cfg:  cfg,
		Pool: &Pool{},
	}
}

// NewTaskFromMessage creates a task and derives its message id from the
// BLAKE2b digest of the raw message, rendered in base32.
func NewTaskFromMessage(cfg *config.Config, message []byte) *Task {
	t := NewTask(cfg)
	digest := blake2b.Sum512(message)
	t.MessageID = base32.Encode(digest[:16])
	return t
}

// SetStage marks a processing stage as entered
func (t *Task) SetStage(stage uint32) {
	t.ProcessedStages |= stage
}

// Logger returns the task logger keyed by message id
func (t *Task) Logger() *zap.Logger {
	if t.logger == nil {
		base := zap.NewNop()
		if t.Cfg != nil && t.Cfg.Logger != nil {
			base = t.Cfg.Logger
		}
		t.logger = base.With(zap.String("message_id", t.MessageID))
	}
	return t.logger
}

// Close destroys the task pool, releasing the metric result
func (t *Task) Close() {
	t.Pool.Destroy()
}
