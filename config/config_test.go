package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rspamd/rspamd-filter-go/symbols"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultGrowFactor, cfg.GrowFactor)
	assert.Equal(t, DefaultMaxShots, cfg.DefaultMaxShots)
	require.NotNil(t, cfg.Symbols)
	require.NotNil(t, cfg.Logger)
	for i := range cfg.Actions {
		assert.True(t, math.IsNaN(cfg.Actions[i]))
	}
}

func TestConfigBuilders(t *testing.T) {
	cache := symbols.NewCache()
	cfg := NewConfig().
		WithAction(ActionReject, 15.0).
		WithGrowFactor(1.1).
		WithMaxShots(4).
		WithCache(cache)

	assert.Equal(t, 15.0, cfg.ActionThreshold(ActionReject))
	assert.Equal(t, 1.1, cfg.GrowFactor)
	assert.Equal(t, 4, cfg.DefaultMaxShots)
	assert.Same(t, cache, cfg.Cache)
}

func TestActionStrings(t *testing.T) {
	cases := map[Action]string{
		ActionReject:         "reject",
		ActionSoftReject:     "soft reject",
		ActionRewriteSubject: "rewrite subject",
		ActionAddHeader:      "add header",
		ActionGreylist:       "greylist",
		ActionNoAction:       "no action",
	}

	for action, name := range cases {
		assert.Equal(t, name, action.String())

		parsed, ok := ActionFromString(name)
		require.True(t, ok, name)
		assert.Equal(t, action, parsed)
	}

	parsed, ok := ActionFromString("soft_reject")
	require.True(t, ok)
	assert.Equal(t, ActionSoftReject, parsed)

	_, ok = ActionFromString("explode")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	doc := []byte(`
actions:
  reject: 15.0
  add_header: 6.0
  greylist: 4.0
grow_factor: 1.1
max_shots: 50
groups:
  - name: fuzzy
    max_score: 12.0
symbols:
  - name: FUZZY_DENIED
    weight: 8.0
    groups: [fuzzy]
    nshots: 2
    description: Message found in the denied fuzzy storage
  - name: DKIM_ALLOW
    weight: -0.5
    one_shot: true
  - name: URIBL_SINGLE
    weight: 3.5
    one_param: true
`)

	cfg, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, 15.0, cfg.Actions[ActionReject])
	assert.Equal(t, 6.0, cfg.Actions[ActionAddHeader])
	assert.Equal(t, 4.0, cfg.Actions[ActionGreylist])
	assert.True(t, math.IsNaN(cfg.Actions[ActionSoftReject]))
	assert.Equal(t, 1.1, cfg.GrowFactor)
	assert.Equal(t, 50, cfg.DefaultMaxShots)

	fuzzy := cfg.Symbols.LookupGroup("fuzzy")
	require.NotNil(t, fuzzy)
	assert.Equal(t, 12.0, fuzzy.MaxScore)

	sym := cfg.Symbols.Lookup("FUZZY_DENIED")
	require.NotNil(t, sym)
	assert.Equal(t, 8.0, sym.StaticWeight())
	assert.Equal(t, 2, sym.NShots)
	require.Len(t, sym.Groups, 1)
	assert.Same(t, fuzzy, sym.Groups[0])

	oneShot := cfg.Symbols.Lookup("DKIM_ALLOW")
	require.NotNil(t, oneShot)
	assert.Equal(t, 1, oneShot.NShots)
	assert.NotZero(t, oneShot.Flags&symbols.FlagOneShot)

	oneParam := cfg.Symbols.Lookup("URIBL_SINGLE")
	require.NotNil(t, oneParam)
	assert.NotZero(t, oneParam.Flags&symbols.FlagOneParam)
	assert.Equal(t, 50, oneParam.NShots)
}

func TestParseUnknownAction(t *testing.T) {
	_, err := Parse([]byte("actions:\n  explode: 1.0\n"))
	assert.Error(t, err)
}

func TestParseEmptySymbolName(t *testing.T) {
	_, err := Parse([]byte("symbols:\n  - weight: 1.0\n"))
	assert.Error(t, err)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("actions: ["))
	assert.Error(t, err)
}
