package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultFilenames are looked up, in order, by FindConfigFile.
var DefaultFilenames = []string{".jsoncoder.yml", "jsoncoder.yml", ".jsoncoder.yaml", "jsoncoder.yaml"}

// Config represents the config file of the generate command.
type Config struct {
	// Packages are go/packages patterns of the model packages.
	Packages []string `yaml:"packages"`
	Output   Output   `yaml:"output"`
	// Types limits generation to these struct names. Empty means every
	// struct with documented list fields.
	Types []string `yaml:"types,omitempty"`

	// Dir is the directory of the config file; patterns and the output
	// filename are relative to it.
	Dir string `yaml:"-"`
}

// Output is where the generated registration file goes.
type Output struct {
	Filename string `yaml:"filename"`
	Package  string `yaml:"package"`
}

func (o Output) IsDefined() bool {
	return o.Filename != "" && o.Package != ""
}

// WantsType reports whether generation includes the struct named name.
func (c *Config) WantsType(name string) bool {
	return len(c.Types) == 0 || slices.Contains(c.Types, name)
}

// OutputPath is the output filename resolved against Dir.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Output.Filename) {
		return c.Output.Filename
	}
	return filepath.Join(c.Dir, c.Output.Filename)
}

// LoadConfig loads and parses the jsoncoder config.
func LoadConfig(configFilename string) (*Config, error) {
	configContent, err := os.ReadFile(configFilename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var c Config

	yamlDecoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(configContent)))), yaml.DisallowUnknownField())
	if err := yamlDecoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	// validation
	if len(c.Packages) == 0 {
		return nil, errors.New("'packages' is required. List the go packages holding the model types")
	}

	if c.Output.Filename == "" {
		return nil, errors.New("'output.filename' is required")
	}

	if !strings.HasSuffix(c.Output.Filename, ".go") {
		return nil, fmt.Errorf("'output.filename' must be a .go file, got %s", c.Output.Filename)
	}

	if c.Output.Package == "" {
		return nil, errors.New("'output.package' is required")
	}

	c.Dir = filepath.Dir(configFilename)

	return &c, nil
}

// FindConfigFile searches dir and then its parents for the first of names.
func FindConfigFile(dir string, names []string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", dir, err)
	}

	for {
		for _, name := range names {
			path := filepath.Join(absDir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return "", fmt.Errorf("unable to find config file, tried %s", strings.Join(names, ", "))
		}
		absDir = parent
	}
}
