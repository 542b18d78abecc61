package layout

import (
	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/types"
)

// BindingInfo describes one resolved `external` member: the descriptor
// slot a host-side renderer needs to bind a buffer or texture to.
type BindingInfo struct {
	Name    string
	Set     uint32
	Binding uint32
	Kind    string // "uniform", "storage", "push_constant"
	Layout  *StructLayout
}

// EntryPointInfo describes one `entry(stage)` function.
type EntryPointInfo struct {
	Name      string
	Stage     string
	Workgroup [3]uint32
}

// Report is the full reflection result for a compiled module: every
// external binding with its resolved layout, and every entry point with
// its stage and (for compute) workgroup size.
type Report struct {
	Bindings    []BindingInfo
	EntryPoints []EntryPointInfo
}

// Reflect walks a resolved module's top-level declarations and builds a
// Report, picking std140 for uniform blocks and std430 for storage
// blocks per §4.10.2 (push constants use std430's tighter packing too,
// since they are never treated as host-mapped buffers).
func Reflect(mod *ast.Module) Report {
	var report Report
	std140 := NewComputer(mod, Std140)
	std430 := NewComputer(mod, Std430)

	for _, s := range mod.Root.Statements {
		switch d := s.(type) {
		case *ast.DeclareExternalStmt:
			for _, m := range d.Members {
				report.Bindings = append(report.Bindings, bindingFor(m, std140, std430))
			}
		case *ast.DeclareFunctionStmt:
			if d.Entry == ast.StageNone {
				continue
			}
			report.EntryPoints = append(report.EntryPoints, entryPointFor(d))
		}
	}
	return report
}

func bindingFor(m ast.DeclareExternalMember, std140, std430 *Computer) BindingInfo {
	b := BindingInfo{Name: m.Name}
	if m.Set.IsResultingValue() {
		b.Set = m.Set.GetResultingValue()
	}
	if m.Binding.IsResultingValue() {
		b.Binding = m.Binding.GetResultingValue()
	}

	switch t := m.Type.(type) {
	case *types.Uniform:
		b.Kind = "uniform"
		b.Layout = std140.StructLayout(int(t.StructIndex))
	case *types.Storage:
		b.Kind = "storage"
		b.Layout = std430.StructLayout(int(t.StructIndex))
	case *types.PushConstant:
		b.Kind = "push_constant"
		b.Layout = std430.StructLayout(int(t.StructIndex))
	default:
		b.Kind = "opaque" // sampler/texture: no host-addressable layout
	}
	return b
}

func entryPointFor(d *ast.DeclareFunctionStmt) EntryPointInfo {
	ep := EntryPointInfo{Name: d.Name}
	switch d.Entry {
	case ast.StageVertex:
		ep.Stage = "vertex"
	case ast.StageFragment:
		ep.Stage = "fragment"
	case ast.StageCompute:
		ep.Stage = "compute"
		for i, w := range d.Workgroup {
			if w.IsResultingValue() {
				ep.Workgroup[i] = w.GetResultingValue()
			} else {
				ep.Workgroup[i] = 1
			}
		}
	}
	return ep
}
