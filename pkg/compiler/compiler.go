// Package compiler is the programmatic entry point nzslc itself calls
// (§5 "one compiler instance per process"): it strings together
// lexing/parsing (C1-C3), resolution (C4/C6), constant folding (C7),
// optional dead-code elimination (§6.1 `--optimize`), validation (C8),
// and the output backends (C9-C11) into the single-call pipeline
// described in §6.1. Grounded on `ShaderCompiler/Compiler.cpp`'s
// ReadInput -> Resolve -> Compile sequence, adapted from that CLI
// driver's member-function steps into a stateless, reusable API a Go
// caller (the CLI, or a future embedder) can call directly.
package compiler

import (
	"fmt"

	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/config"
	"github.com/nzslang/nzslc/internal/constfold"
	"github.com/nzslang/nzslc/internal/dce"
	"github.com/nzslang/nzslc/internal/diagnostic"
	"github.com/nzslang/nzslc/internal/parser"
	"github.com/nzslang/nzslc/internal/printer"
	"github.com/nzslang/nzslc/internal/resolver"
	"github.com/nzslang/nzslc/internal/sema"
	"github.com/nzslang/nzslc/internal/serial"
	"github.com/nzslang/nzslc/internal/spirv"
	"github.com/nzslang/nzslc/internal/validate"
)

// Format names one of the `-c`/`--compile` output kinds (§6.1).
type Format string

const (
	FormatNZSL   Format = "nzsl"
	FormatNZSLB  Format = "nzslb"
	FormatSPV    Format = "spv"
	FormatSPVDis Format = "spv-dis"
	FormatGLSL   Format = "glsl"
)

// Output is one rendered artifact: either Text (nzsl, spv-dis, glsl) or
// Binary (nzslb, spv), never both.
type Output struct {
	Format Format
	Text   string
	Binary []byte
}

// Error wraps a pipeline-stage failure with the diagnostics that stage
// produced, letting a caller print them with internal/diagnostic's
// classic/VisualStudio rendering (§7 POLICY) instead of a bare Go error
// string.
type Error struct {
	Stage string
	List  *diagnostic.List
}

func (e *Error) Error() string {
	if e.List != nil {
		return fmt.Sprintf("%s: %d diagnostic(s)", e.Stage, e.List.Count())
	}
	return e.Stage
}

// Compile runs the full pipeline over src (named fileName for
// diagnostics) under opts, producing one Output per requested format in
// formats, in order. It stops at the first stage that raises an error,
// mirroring §7 POLICY ("a failing pass returns the first diagnostic").
//
// Unlike the original's per-output AST clone (CompileToX is free to
// mutate the module it's handed, since every later output would see a
// stale AST otherwise), none of this backend's emitters (printer,
// serial, spirv) mutate the resolved module, so a single resolve+fold
// (+optimize) pass is shared across every requested format instead of
// being repeated or cloned per format.
func Compile(src, fileName string, opts config.Options, fsResolver resolver.Resolver, formats []Format) ([]Output, error) {
	mod, err := Parse(src, fileName)
	if err != nil {
		return nil, err
	}

	if err := Resolve(mod, fsResolver, opts.Partial); err != nil {
		return nil, err
	}

	if err := Fold(mod); err != nil {
		return nil, err
	}

	if opts.Optimize {
		Optimize(mod)
	}

	if err := Validate(mod, opts); err != nil {
		return nil, err
	}

	outputs := make([]Output, 0, len(formats))
	for _, f := range formats {
		out, err := Render(mod, f, opts)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// NewModuleResolver builds the filesystem module resolver for the
// `--module` search paths in roots (§6.5). Each imported file is run
// through the same Parse+Resolve steps as the top-level compile (an
// import's own nested imports are resolved recursively through the
// same resolver instance), matching
// `ShaderCompiler/Compiler.cpp`'s `Resolve` step wiring a single
// `FilesystemModuleResolver` shared across the whole compile.
func NewModuleResolver(roots []string) *resolver.FilesystemResolver {
	var fsRes *resolver.FilesystemResolver
	fsRes = resolver.NewFilesystemResolver(roots, func(source, fileName string) (*ast.Module, error) {
		mod, err := Parse(source, fileName)
		if err != nil {
			return nil, err
		}
		if err := Resolve(mod, fsRes, false); err != nil {
			return nil, err
		}
		return mod, nil
	})
	return fsRes
}

// Parse runs the lexer/parser (C1-C3) over src.
func Parse(src, fileName string) (*ast.Module, error) {
	mod, errs := parser.Parse(src, fileName)
	if len(errs) > 0 {
		list := diagnostic.NewList(src)
		for _, e := range errs {
			list.Errorf(diagnostic.FamilyParse, e.Loc, "parse", "%s", e.Message)
		}
		return nil, &Error{Stage: "parse", List: list}
	}
	return mod, nil
}

// Resolve runs name/type resolution (C4/C6) over mod. fsResolver may be
// nil (no `--module` paths given). partial does not change resolution:
// sema.Resolve takes no options, so an unresolved identifier is an
// error whether or not partial is set.
func Resolve(mod *ast.Module, fsResolver resolver.Resolver, partial bool) error {
	_ = partial // sema.Resolve takes no options
	errs := sema.Resolve(mod, fsResolver)
	if len(errs) > 0 {
		list := diagnostic.NewList("")
		for _, e := range errs {
			list.Errorf(diagnostic.FamilyResolve, e.Loc, "resolve", "%s", e.Message)
		}
		return &Error{Stage: "resolve", List: list}
	}
	return nil
}

// Fold runs constant folding (C7) over mod.
func Fold(mod *ast.Module) error {
	errs := constfold.Fold(mod)
	if len(errs) > 0 {
		list := diagnostic.NewList("")
		for _, e := range errs {
			list.Errorf(diagnostic.FamilyConst, e.Loc, "const", "%s", e.Message)
		}
		return &Error{Stage: "constfold", List: list}
	}
	return nil
}

// Optimize runs dead-code elimination (§6.1 `--optimize`) over mod,
// pruning unreached declarations in place.
func Optimize(mod *ast.Module) int {
	result := dce.Mark(mod)
	return dce.Prune(mod, result)
}

// Validate runs semantic validation (C8) over mod.
func Validate(mod *ast.Module, opts config.Options) error {
	result := validate.Validate(mod, validate.Options{PartialCompilation: opts.Partial})
	if !result.Valid {
		return &Error{Stage: "validate", List: result.Diagnostics}
	}
	return nil
}

// Render lowers mod to one requested output format. mod must already be
// resolved, folded, and validated.
func Render(mod *ast.Module, format Format, opts config.Options) (Output, error) {
	switch format {
	case FormatNZSL:
		return Output{Format: format, Text: printer.Print(mod, printer.Options{})}, nil
	case FormatNZSLB:
		return Output{Format: format, Binary: serial.Serialize(mod)}, nil
	case FormatSPV:
		return Output{Format: format, Binary: spirv.Emit(mod)}, nil
	case FormatSPVDis:
		return Output{Format: format, Text: spirv.Disassemble(spirv.Emit(mod))}, nil
	case FormatGLSL:
		text := printer.GenerateGLSL(mod, printer.GLSLOptions{
			ES:      opts.GLES,
			Version: opts.GLVersion,
			FlipY:   opts.GLFlipY,
			RemapZ:  opts.GLRemapZ,
		})
		return Output{Format: format, Text: text}, nil
	default:
		return Output{}, fmt.Errorf("compiler: unknown output format %q", format)
	}
}

// HeaderName returns the file extension Render's output should be
// written under for format, per §6.1's format table.
func HeaderName(format Format) string {
	switch format {
	case FormatNZSL:
		return "nzsl"
	case FormatNZSLB:
		return "nzslb"
	case FormatSPV:
		return "spv"
	case FormatSPVDis:
		return "spv.txt"
	case FormatGLSL:
		return "glsl"
	default:
		return string(format)
	}
}

// ToHeader renders data as a C-style byte-array header (§6.1 `-header`
// suffix: "generate an includable header file"), grounded on
// Compiler.cpp's ToHeader.
func ToHeader(name string, data []byte) string {
	var sb []byte
	sb = append(sb, []byte(fmt.Sprintf("static const unsigned char %s[] = {\n", name))...)
	for i, b := range data {
		if i%16 == 0 {
			sb = append(sb, '\t')
		}
		sb = append(sb, []byte(fmt.Sprintf("0x%02x,", b))...)
		if i%16 == 15 {
			sb = append(sb, '\n')
		} else {
			sb = append(sb, ' ')
		}
	}
	sb = append(sb, []byte("\n};\n")...)
	return string(sb)
}
