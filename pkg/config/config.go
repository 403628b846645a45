package config

import (
	"fmt"
	"strings"

	"github.com/alizademhdi/C-minus-compiler/pkg/cli"
)

type Feature int

const (
	FeatLineComments Feature = iota
	FeatOutput
	FeatCount
)

type Warning int

const (
	WarnShadow Warning = iota
	WarnRedeclare
	WarnUnusedValue
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning

	// Memory layout of the generated program. Data grows up from DataBase,
	// temporaries from TempBase; the two regions never meet.
	WordSize int
	DataBase int
	TempBase int
}

func NewConfig() *Config {
	cfg := &Config{
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		WordSize:   4,
		DataBase:   100,
		TempBase:   5000,
	}

	features := map[Feature]Info{
		FeatLineComments: {"line-comments", true, "Accept C++-style '//' line comments."},
		FeatOutput:       {"output", true, "Treat 'output' as the builtin that prints its argument."},
	}

	warnings := map[Warning]Info{
		WarnShadow:      {"shadow", false, "Warn when a local declaration hides a global one."},
		WarnRedeclare:   {"redeclare", true, "Warn when a name is declared twice in the same scope."},
		WarnUnusedValue: {"unused-value", true, "Warn about expression statements that are a bare literal."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}
	return cfg
}

// Validate checks that the memory layout is usable.
func (c *Config) Validate() error {
	switch {
	case c.WordSize <= 0:
		return fmt.Errorf("word size must be positive, got %d", c.WordSize)
	case c.DataBase < 0 || c.DataBase%c.WordSize != 0:
		return fmt.Errorf("data base %d is not a non-negative multiple of the word size %d", c.DataBase, c.WordSize)
	case c.TempBase%c.WordSize != 0:
		return fmt.Errorf("temporaries base %d is not a multiple of the word size %d", c.TempBase, c.WordSize)
	case c.TempBase <= c.DataBase:
		return fmt.Errorf("temporaries base %d must lie above the data base %d", c.TempBase, c.DataBase)
	}
	return nil
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// ApplyFlag understands -W<name>, -Wno-<name>, -Wall, -Wno-all, -F<name> and
// -Fno-<name>. Unknown names are reported.
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	var isWarning bool
	switch {
	case strings.HasPrefix(trimmed, "W"):
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
	default:
		return fmt.Errorf("unrecognized flag '%s'", flag)
	}

	name := trimmed[1:]
	enable := !strings.HasPrefix(name, "no-")
	name = strings.TrimPrefix(name, "no-")

	if isWarning {
		if name == "all" {
			for i := Warning(0); i < WarnCount; i++ {
				c.SetWarning(i, enable)
			}
			return nil
		}
		w, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(w, enable)
		return nil
	}

	f, ok := c.FeatureMap[name]
	if !ok {
		return fmt.Errorf("unknown feature '%s'", name)
	}
	c.SetFeature(f, enable)
	return nil
}

// FlagEntries holds the enable/disable switches registered on a flag set.
type FlagEntries struct {
	Warnings []cli.FlagGroupEntry
	Features []cli.FlagGroupEntry
}

// SetupFlagGroups registers one -W/-Wno- pair per warning and one -F/-Fno-
// pair per feature. Call Apply after parsing.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) *FlagEntries {
	entries := &FlagEntries{
		Warnings: make([]cli.FlagGroupEntry, WarnCount),
		Features: make([]cli.FlagGroupEntry, FeatCount),
	}
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		entries.Warnings[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool), Default: info.Enabled,
		}
	}
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		entries.Features[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool), Default: info.Enabled,
		}
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings.", "warning", "Available Warnings:", entries.Warnings)
	fs.AddFlagGroup("Feature Flags", "Enable or disable language features.", "feature", "Available Features:", entries.Features)
	return entries
}

// Apply copies the parsed switches into the configuration.
func (e *FlagEntries) Apply(c *Config) {
	for i, entry := range e.Warnings {
		if *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range e.Features {
		if *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
