package layout

import (
	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/types"
)

// StructLayout is the computed memory shape of one NZSL struct under a
// Mode: every field's byte offset, and the struct's own overall size and
// alignment (so it can itself be nested inside an array or another
// struct).
type StructLayout struct {
	Name      string
	Size      int
	Alignment int
	Fields    []FieldLayout
}

// FieldLayout is one struct member's computed placement.
type FieldLayout struct {
	Name   string
	Offset int
	Layout Layout
	Nested *StructLayout // set when the field's type is itself a struct
}

// Computer computes Layouts for a single module's types under a fixed
// Mode, caching struct layouts since the same struct is commonly
// referenced from several externals.
type Computer struct {
	mode    Mode
	structs map[int]*ast.DeclareStructStmt
	cache   map[int]*StructLayout
}

// NewComputer indexes every struct declared at module scope by its
// registration order, which is how internal/sema numbers types.Struct
// indices (§4.6 "phase 1: struct names").
func NewComputer(mod *ast.Module, mode Mode) *Computer {
	c := &Computer{mode: mode, structs: make(map[int]*ast.DeclareStructStmt), cache: make(map[int]*StructLayout)}
	idx := 0
	for _, s := range mod.Root.Statements {
		if d, ok := s.(*ast.DeclareStructStmt); ok {
			c.structs[idx] = d
			idx++
		}
	}
	return c
}

// Of computes the Layout of an arbitrary resolved type.
func (c *Computer) Of(t types.Type) Layout {
	switch tt := types.ResolveAlias(t).(type) {
	case *types.Prim:
		return Layout{Size: scalarSize, Alignment: scalarSize}
	case *types.Vector:
		return vectorLayout(tt.ComponentCount, c.mode)
	case *types.Matrix:
		return matrixLayout(tt.Columns, tt.Rows, c.mode)
	case *types.Array:
		elem := c.Of(tt.Element)
		stride := c.arrayStride(elem)
		return Layout{Size: stride * int(tt.Length), Alignment: stride, Stride: stride}
	case *types.DynArray:
		elem := c.Of(tt.Element)
		stride := c.arrayStride(elem)
		return Layout{Size: 0, Alignment: stride, Stride: stride}
	case *types.Struct:
		sl := c.StructLayout(int(tt.Index))
		if sl == nil {
			return Layout{}
		}
		return Layout{Size: sl.Size, Alignment: sl.Alignment}
	default:
		return Layout{}
	}
}

// arrayStride rounds an element's natural size up to its own alignment
// (and, under Std140, further up to 16 bytes — "array element stride
// must be a multiple of 16" per §4.10.2).
func (c *Computer) arrayStride(elem Layout) int {
	stride := roundUp(elem.Size, elem.Alignment)
	if c.mode == Std140 {
		stride = roundUp(stride, 16)
	}
	return stride
}

// StructLayout computes (and caches) the field-by-field layout of the
// struct registered at structIndex.
func (c *Computer) StructLayout(structIndex int) *StructLayout {
	if sl, ok := c.cache[structIndex]; ok {
		return sl
	}
	decl, ok := c.structs[structIndex]
	if !ok {
		return nil
	}

	sl := &StructLayout{Name: decl.Name}
	c.cache[structIndex] = sl // break cycles before recursing into members

	offset := 0
	maxAlign := 1
	for _, m := range decl.Members {
		fl := c.Of(m.Type)
		if fl.Alignment == 0 {
			fl.Alignment = 1
		}
		offset = roundUp(offset, fl.Alignment)

		field := FieldLayout{Name: m.Name, Offset: offset, Layout: fl}
		if st, ok := types.ResolveAlias(m.Type).(*types.Struct); ok {
			field.Nested = c.StructLayout(int(st.Index))
		}
		sl.Fields = append(sl.Fields, field)

		offset += fl.Size
		if fl.Alignment > maxAlign {
			maxAlign = fl.Alignment
		}
	}

	sl.Alignment = maxAlign
	sl.Size = roundUp(offset, maxAlign)
	return sl
}

// FieldOffsets returns just the byte offset of each member of the
// struct at structIndex, in declaration order — the shape
// internal/spirv consults when it emits OpMemberDecorate Offset for a
// uniform or storage block (§4.10.2, §4.10.6).
func (c *Computer) FieldOffsets(structIndex int) []int {
	sl := c.StructLayout(structIndex)
	if sl == nil {
		return nil
	}
	offsets := make([]int, len(sl.Fields))
	for i, f := range sl.Fields {
		offsets[i] = f.Offset
	}
	return offsets
}
