package balance

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names a definition encoding.
type Format string

// Supported definition encodings.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Load reads and decodes the definition at path. It does not validate.
func Load(path string) (*Definition, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	def.SourceFile = path
	return def, nil
}

// Parse decodes a definition and fills in defaults. Unknown keys are an
// error so typos in hand-written files surface early.
func Parse(data []byte, format Format) (*Definition, error) {
	var def Definition
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	applyDefaults(&def)
	return &def, nil
}

// LoadAndValidate loads path and returns an error joining every validation
// problem, if any.
func LoadAndValidate(path string) (*Definition, error) {
	def, err := Load(path)
	if err != nil {
		return nil, err
	}
	if verrs := Validate(def); len(verrs) > 0 {
		return nil, Join(verrs)
	}
	return def, nil
}

// Join folds validation errors into one error that still matches their
// sentinels with errors.Is.
func Join(verrs []ValidationError) error {
	errs := make([]error, len(verrs))
	for i := range verrs {
		errs[i] = &verrs[i]
	}
	return errors.Join(errs...)
}

func applyDefaults(def *Definition) {
	if def.Currency == "" {
		def.Currency = DefaultCurrency
	}
	for i := range def.Generators {
		g := &def.Generators[i]
		if g.CostGrowth == 0 {
			g.CostGrowth = DefaultCostGrowth
		}
		if g.Multiplier == 0 {
			g.Multiplier = DefaultMultiplier
		}
		if g.Name == "" {
			g.Name = g.ID
		}
	}
	for i := range def.Milestones {
		if def.Milestones[i].Reward == 0 {
			def.Milestones[i].Reward = DefaultRewardMultiplier
		}
	}
	if def.Prestige.ScalingExponent == 0 {
		def.Prestige.ScalingExponent = DefaultScalingExponent
	}
	if def.Prestige.ID == "" {
		def.Prestige.ID = "prestige"
	}
	for i := range def.Nodes {
		if def.Nodes[i].Effect.Kind != EffectNone && def.Nodes[i].Effect.Factor == 0 {
			def.Nodes[i].Effect.Factor = 1
		}
	}
}
