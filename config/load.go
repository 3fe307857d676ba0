package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rspamd/rspamd-filter-go/errors"
	"github.com/rspamd/rspamd-filter-go/symbols"
)

// yamlConfig is the on-disk configuration layout
type yamlConfig struct {
	Actions    map[string]float64 `yaml:"actions"`
	GrowFactor *float64           `yaml:"grow_factor"`
	MaxShots   *int               `yaml:"max_shots"`
	Groups     []yamlGroup        `yaml:"groups"`
	Symbols    []yamlSymbol       `yaml:"symbols"`
}

type yamlGroup struct {
	Name        string  `yaml:"name"`
	MaxScore    float64 `yaml:"max_score"`
	Description string  `yaml:"description"`
}

type yamlSymbol struct {
	Name        string   `yaml:"name"`
	Weight      float64  `yaml:"weight"`
	Groups      []string `yaml:"groups"`
	OneShot     bool     `yaml:"one_shot"`
	OneParam    bool     `yaml:"one_param"`
	NShots      int      `yaml:"nshots"`
	Description string   `yaml:"description"`
}

// Load reads a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(err)
	}
	return Parse(data)
}

// Parse builds a Config from a YAML document. Unknown action names are
// rejected; groups referenced by symbols are interned on first use.
func Parse(data []byte) (*Config, error) {
	var doc yamlConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewSerdeError(err)
	}

	cfg := NewConfig()

	for name, score := range doc.Actions {
		action, ok := ActionFromString(name)
		if !ok {
			return nil, errors.NewConfigError("unknown action: " + name)
		}
		cfg.Actions[action] = score
	}
	if doc.GrowFactor != nil {
		cfg.GrowFactor = *doc.GrowFactor
	}
	if doc.MaxShots != nil {
		cfg.DefaultMaxShots = *doc.MaxShots
	}

	for _, g := range doc.Groups {
		cfg.Symbols.AddGroup(&symbols.Group{
			Name:        g.Name,
			MaxScore:    g.MaxScore,
			Description: g.Description,
		})
	}

	for i := range doc.Symbols {
		ys := &doc.Symbols[i]
		if ys.Name == "" {
			return nil, errors.NewConfigError("symbol with empty name")
		}

		var flags symbols.Flags
		nshots := ys.NShots
		if ys.OneShot {
			flags |= symbols.FlagOneShot
			nshots = 1
		}
		if ys.OneParam {
			flags |= symbols.FlagOneParam
		}
		if nshots == 0 {
			nshots = cfg.DefaultMaxShots
		}

		weight := ys.Weight
		sym := &symbols.Symbol{
			Name:        ys.Name,
			Weight:      &weight,
			Flags:       flags,
			NShots:      nshots,
			Description: ys.Description,
		}
		for _, gname := range ys.Groups {
			sym.Groups = append(sym.Groups, cfg.Symbols.Group(gname))
		}
		cfg.Symbols.Register(sym)
	}

	return cfg, nil
}
