// Package config merges compiler options coming from a project config
// file with the flags passed on the nzslc command line (§6.1). CLI flags
// always win; the file only supplies defaults for a directory of shaders
// compiled the same way every time.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DebugLevel names how much OpLine/OpName debug information to request
// from the SPIR-V backend (§4.10.6). It is carried in Options only:
// spirv.Emit takes no debug level and produces the same module at every
// level.
type DebugLevel string

const (
	DebugNone    DebugLevel = "none"
	DebugMinimal DebugLevel = "minimal"
	DebugRegular DebugLevel = "regular"
	DebugFull    DebugLevel = "full"
)

// Options is the fully-resolved set of compile options for one
// invocation, after merging file defaults with CLI overrides (§6.1).
type Options struct {
	Output        string
	Compile       bool
	ModuleDirs    []string
	DebugLevel    DebugLevel
	Partial       bool
	Optimize      bool
	GLES          bool
	GLVersion     int
	GLFlipY       bool
	GLRemapZ      bool
	GLBindingMap  bool
	SPIRVVersion  string
}

// DefaultOptions returns the compiler's built-in defaults, used when
// neither a config file nor a CLI flag sets a value.
func DefaultOptions() Options {
	return Options{
		Compile:      true,
		DebugLevel:   DebugRegular,
		GLVersion:    330,
		SPIRVVersion: "1.0",
	}
}

// FileConfig is the JSON shape of a project config file. Every field is
// optional; a nil pointer means "not set here, inherit the default or
// whatever the CLI passes".
type FileConfig struct {
	Output       *string  `json:"output,omitempty"`
	Compile      *bool    `json:"compile,omitempty"`
	ModuleDirs   []string `json:"moduleDirs,omitempty"`
	DebugLevel   *string  `json:"debugLevel,omitempty"`
	Partial      *bool    `json:"partial,omitempty"`
	Optimize     *bool    `json:"optimize,omitempty"`
	GLES         *bool    `json:"glES,omitempty"`
	GLVersion    *int     `json:"glVersion,omitempty"`
	GLFlipY      *bool    `json:"glFlipY,omitempty"`
	GLRemapZ     *bool    `json:"glRemapZ,omitempty"`
	GLBindingMap *bool    `json:"glBindingMap,omitempty"`
	SPIRVVersion *string  `json:"spvVersion,omitempty"`
}

// FileNames are the config file names searched for, in order of
// preference, starting from a shader's directory and walking up.
var FileNames = []string{"nzslc.json", ".nzslcrc"}

// Load searches startDir and its ancestors for a config file, returning
// nil (no error) if none is found.
func Load(startDir string) (*FileConfig, string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile parses a single config file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ToOptions lays the file config's set fields over the compiler
// defaults.
func (c *FileConfig) ToOptions() Options {
	opts := DefaultOptions()
	if c == nil {
		return opts
	}
	if c.Output != nil {
		opts.Output = *c.Output
	}
	if c.Compile != nil {
		opts.Compile = *c.Compile
	}
	if len(c.ModuleDirs) > 0 {
		opts.ModuleDirs = c.ModuleDirs
	}
	if c.DebugLevel != nil {
		opts.DebugLevel = DebugLevel(*c.DebugLevel)
	}
	if c.Partial != nil {
		opts.Partial = *c.Partial
	}
	if c.Optimize != nil {
		opts.Optimize = *c.Optimize
	}
	if c.GLES != nil {
		opts.GLES = *c.GLES
	}
	if c.GLVersion != nil {
		opts.GLVersion = *c.GLVersion
	}
	if c.GLFlipY != nil {
		opts.GLFlipY = *c.GLFlipY
	}
	if c.GLRemapZ != nil {
		opts.GLRemapZ = *c.GLRemapZ
	}
	if c.GLBindingMap != nil {
		opts.GLBindingMap = *c.GLBindingMap
	}
	if c.SPIRVVersion != nil {
		opts.SPIRVVersion = *c.SPIRVVersion
	}
	return opts
}

// CLIOverrides mirrors the nzslc flag set (§6.1); a nil pointer means
// the flag was left at its pflag zero value and should not override the
// file config.
type CLIOverrides struct {
	Output       *string
	Compile      *bool
	ModuleDirs   []string
	DebugLevel   *string
	Partial      *bool
	Optimize     *bool
	GLES         *bool
	GLVersion    *int
	GLFlipY      *bool
	GLRemapZ     *bool
	GLBindingMap *bool
	SPIRVVersion *string
}

// Merge applies CLI overrides on top of the file config, CLI winning on
// every field it sets (§6.1: "flags override the project config file").
func (c *FileConfig) Merge(cli CLIOverrides) Options {
	opts := c.ToOptions()
	if cli.Output != nil {
		opts.Output = *cli.Output
	}
	if cli.Compile != nil {
		opts.Compile = *cli.Compile
	}
	if len(cli.ModuleDirs) > 0 {
		opts.ModuleDirs = append(opts.ModuleDirs, cli.ModuleDirs...)
	}
	if cli.DebugLevel != nil {
		opts.DebugLevel = DebugLevel(*cli.DebugLevel)
	}
	if cli.Partial != nil {
		opts.Partial = *cli.Partial
	}
	if cli.Optimize != nil {
		opts.Optimize = *cli.Optimize
	}
	if cli.GLES != nil {
		opts.GLES = *cli.GLES
	}
	if cli.GLVersion != nil {
		opts.GLVersion = *cli.GLVersion
	}
	if cli.GLFlipY != nil {
		opts.GLFlipY = *cli.GLFlipY
	}
	if cli.GLRemapZ != nil {
		opts.GLRemapZ = *cli.GLRemapZ
	}
	if cli.GLBindingMap != nil {
		opts.GLBindingMap = *cli.GLBindingMap
	}
	if cli.SPIRVVersion != nil {
		opts.SPIRVVersion = *cli.SPIRVVersion
	}
	return opts
}
