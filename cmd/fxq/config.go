package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pfcm/fxq"
	"github.com/pfcm/fxq/overflow"
	"github.com/pfcm/fxq/round"
)

// unitConfig is one entry in the yaml units file. Kind picks the unit
// flavor: "fixed" needs Format, "multi" needs Wordlength.
type unitConfig struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	Format     string `yaml:"format,omitempty"`
	Wordlength int    `yaml:"wordlength,omitempty"`
	Rounding   string `yaml:"rounding,omitempty"`
	Overflow   string `yaml:"overflow,omitempty"`
	// AllowOverflow and AllowUnderflow default to true: silent
	// correction, like the units themselves.
	AllowOverflow  *bool `yaml:"allow_overflow,omitempty"`
	AllowUnderflow *bool `yaml:"allow_underflow,omitempty"`
}

type fileConfig struct {
	Units []unitConfig `yaml:"units"`
}

var builtinUnits = []unitConfig{
	{Name: "q7", Kind: "fixed", Format: "Q1.6", Rounding: "nearest", Overflow: "saturate"},
	{Name: "q15", Kind: "fixed", Format: "Q1.14", Rounding: "nearest", Overflow: "saturate"},
	{Name: "uq8", Kind: "fixed", Format: "uQ8.0", Rounding: "nearest", Overflow: "wraparound"},
	{Name: "dsp16", Kind: "multi", Wordlength: 16, Rounding: "floor", Overflow: "wraparound"},
	{Name: "dsp24", Kind: "multi", Wordlength: 24, Rounding: "nearest", Overflow: "saturate"},
}

// loadUnits returns the builtin definitions with the config file, if any,
// merged over them by name.
func loadUnits(path string) (map[string]unitConfig, error) {
	units := make(map[string]unitConfig, len(builtinUnits))
	for _, uc := range builtinUnits {
		units[uc.Name] = uc
	}
	if path == "" {
		return units, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, uc := range fc.Units {
		if uc.Name == "" {
			return nil, fmt.Errorf("%s: unit with no name", path)
		}
		units[uc.Name] = uc
	}
	return units, nil
}

// buildUnit turns a definition into a live unit.
func buildUnit(uc unitConfig) (fxq.Unit, error) {
	var opts []fxq.Option
	if uc.Rounding != "" {
		rm, err := round.ParseMode(uc.Rounding)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", uc.Name, err)
		}
		opts = append(opts, fxq.WithRounding(rm))
	}
	if uc.Overflow != "" {
		om, err := overflow.ParseMode(uc.Overflow)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", uc.Name, err)
		}
		opts = append(opts, fxq.WithOverflow(om))
	}
	if uc.AllowOverflow != nil && !*uc.AllowOverflow {
		opts = append(opts, fxq.WithAllowOverflow(fxq.NoOps))
	}
	if uc.AllowUnderflow != nil && !*uc.AllowUnderflow {
		opts = append(opts, fxq.WithAllowUnderflow(fxq.NoOps))
	}
	switch uc.Kind {
	case "fixed":
		f, err := fxq.ParseFormat(uc.Format)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", uc.Name, err)
		}
		return fxq.NewFixed(f, opts...)
	case "multi":
		return fxq.NewMulti(uc.Wordlength, opts...)
	default:
		return nil, fmt.Errorf("unit %s: unknown kind %q", uc.Name, uc.Kind)
	}
}

// activeUnit resolves the --unit flag against the loaded definitions.
func activeUnit() (fxq.Unit, error) {
	units, err := loadUnits(cfgFile)
	if err != nil {
		return nil, err
	}
	uc, ok := units[unitName]
	if !ok {
		return nil, fmt.Errorf("no unit named %q, try \"fxq units\"", unitName)
	}
	return buildUnit(uc)
}

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the available processing units",
	RunE:  runUnits,
}

func init() {
	rootCmd.AddCommand(unitsCmd)
}

func runUnits(cmd *cobra.Command, args []string) error {
	units, err := loadUnits(cfgFile)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		u, err := buildUnit(units[name])
		if err != nil {
			return err
		}
		fmt.Printf("%-8s %v\n", name, u)
	}
	return nil
}
