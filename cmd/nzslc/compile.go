package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/config"
	"github.com/nzslang/nzslc/internal/serial"
	"github.com/nzslang/nzslc/pkg/compiler"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <input>",
	Short: "Compile an NZSL shader to one or more output formats.",
	Long: `Compile a .nzsl or .nzslb shader module to the formats requested by
--compile (nzsl, nzslb, spv, spv-dis, glsl; each may carry a "-header"
suffix to also emit a C-style byte-array header).`,
	Args: cobra.ExactArgs(1),
	Run:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringP("output", "o", "", "output directory, or the sentinel @stdout / @null")
	compileCmd.Flags().StringArrayP("compile", "c", []string{"nzslb"}, "comma-separated output formats: nzsl, nzslb, spv, spv-dis, glsl (each may take a -header suffix)")
	compileCmd.Flags().StringArrayP("module", "m", nil, "extra module source file or directory (may repeat)")
	compileCmd.Flags().StringP("debug-level", "d", "", "one of none|minimal|regular|full")
	compileCmd.Flags().BoolP("partial", "p", false, "downgrade validator argument-type errors to warnings (unresolved identifiers remain errors)")
	compileCmd.Flags().Bool("optimize", false, "enable constant propagation and dead-code elimination")
	compileCmd.Flags().Bool("gl-es", false, "emit GLSL ES rather than desktop GLSL")
	compileCmd.Flags().Int("gl-version", 0, "GLSL version x100 (e.g. 330)")
	compileCmd.Flags().Bool("gl-flipy", false, "inject a conditional Y-flip for clip-space output")
	compileCmd.Flags().Bool("gl-remapz", false, "inject a conditional Z-remap for clip-space output")
	compileCmd.Flags().Bool("gl-bindingmap", false, "no effect: no binding-map file is written and GLSL output keeps each external's set and binding")
	compileCmd.Flags().String("spv-version", "", "SPIR-V version x100 (e.g. 100 for 1.0); not read: spv output is always SPIR-V 1.3")
	compileCmd.Flags().BoolP("verbose", "v", false, "raise compiler trace logging to debug level")
}

// outputFormat is one parsed `-c` entry: a format name plus whether its
// "-header" suffix (§6.1) was present.
type outputFormat struct {
	format compiler.Format
	header bool
}

func parseFormats(raw []string) []outputFormat {
	var out []outputFormat
	for _, group := range raw {
		for _, entry := range strings.Split(group, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			header := strings.HasSuffix(entry, "-header")
			if header {
				entry = strings.TrimSuffix(entry, "-header")
			}
			out = append(out, outputFormat{format: compiler.Format(entry), header: header})
		}
	}
	return out
}

func runCompile(cmd *cobra.Command, args []string) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
	log.WithField("input", args[0]).Debug("starting compile")

	inputPath := args[0]
	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fileCfg, cfgPath, err := config.Load(filepath.Dir(inputPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfgPath != "" {
		log.WithField("path", cfgPath).Debug("loaded config file")
	}

	opts := fileCfg.Merge(config.CLIOverrides{
		Output:       changedString(cmd, "output"),
		ModuleDirs:   GetStringArray(cmd, "module"),
		DebugLevel:   changedString(cmd, "debug-level"),
		Partial:      changedBool(cmd, "partial"),
		Optimize:     changedBool(cmd, "optimize"),
		GLES:         changedBool(cmd, "gl-es"),
		GLVersion:    changedInt(cmd, "gl-version"),
		GLFlipY:      changedBool(cmd, "gl-flipy"),
		GLRemapZ:     changedBool(cmd, "gl-remapz"),
		GLBindingMap: changedBool(cmd, "gl-bindingmap"),
		SPIRVVersion: changedString(cmd, "spv-version"),
	})

	formats := parseFormats(GetStringArray(cmd, "compile"))
	if len(formats) == 0 {
		fmt.Fprintln(os.Stderr, "nzslc: no output format requested (-c)")
		os.Exit(2)
	}

	fsResolver := compiler.NewModuleResolver(opts.ModuleDirs)

	mod, err := loadModule(inputPath, data)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}

	if err := compiler.Resolve(mod, fsResolver, opts.Partial); err != nil {
		reportError(err)
		os.Exit(1)
	}
	if err := compiler.Fold(mod); err != nil {
		reportError(err)
		os.Exit(1)
	}
	if opts.Optimize {
		n := compiler.Optimize(mod)
		log.WithField("pruned", n).Debug("dead-code elimination pruned unreachable declarations")
	}
	if err := compiler.Validate(mod, opts); err != nil {
		reportError(err)
		os.Exit(1)
	}

	for _, f := range formats {
		out, err := compiler.Render(mod, f.format, opts)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}
		if err := writeOutput(inputPath, opts.Output, f.header, out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// loadModule dispatches on the input's extension (§6.5): `.nzsl` source
// is lexed and parsed, `.nzslb` is deserialized from the binary module
// format (C9) directly, skipping C1-C3 entirely.
func loadModule(path string, data []byte) (*ast.Module, error) {
	switch filepath.Ext(path) {
	case ".nzsl":
		return compiler.Parse(string(data), path)
	case ".nzslb":
		mod, err := serial.Deserialize(data)
		if err != nil {
			return nil, fmt.Errorf("deserializing %s: %w", path, err)
		}
		return mod, nil
	default:
		return nil, fmt.Errorf("%s has unknown extension %q", filepath.Base(path), filepath.Ext(path))
	}
}

// reportError prints a *compiler.Error's diagnostics in nzslc's
// "classic" format (§7 POLICY), or just the bare message for any other
// error (file I/O, deserialization).
func reportError(err error) {
	if cerr, ok := err.(*compiler.Error); ok && cerr.List != nil {
		fmt.Fprint(os.Stderr, cerr.List.Format())
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// writeOutput places one rendered Output at the path computed from
// input's base name plus the format's extension under outputDir,
// honoring the `@stdout`/`@null` sentinels (§6.1) and the `-header`
// suffix (rendering a C-style byte array instead of the raw bytes).
func writeOutput(input, outputDir string, header bool, out compiler.Output) error {
	data := []byte(out.Text)
	if out.Binary != nil {
		data = out.Binary
	}

	ext := compiler.HeaderName(out.Format)
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	arrayName := strings.ReplaceAll(name, "-", "_") + "_" + strings.ReplaceAll(ext, ".", "_")

	if header {
		data = []byte(compiler.ToHeader(arrayName, data))
		ext += ".h"
	}

	switch outputDir {
	case "@null":
		return nil
	case "@stdout":
		_, err := os.Stdout.Write(data)
		return err
	default:
		dir := outputDir
		if dir == "" {
			dir = filepath.Dir(input)
		} else if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		outPath := filepath.Join(dir, name+"."+ext)
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		log.WithField("path", outPath).Debug("wrote output file")
		return nil
	}
}
