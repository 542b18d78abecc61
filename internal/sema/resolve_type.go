package sema

import (
	"strconv"
	"strings"

	"github.com/nzslang/nzslc/internal/lexer"
	"github.com/nzslang/nzslc/internal/types"
)

// primitiveNames maps NZSL primitive type spellings to their Primitive
// tag (§3.2 keyword/identifier type names).
var primitiveNames = map[string]types.Primitive{
	"bool": types.Bool,
	"f32":  types.F32,
	"f64":  types.F64,
	"i32":  types.I32,
	"u32":  types.U32,
}

// resolveType turns a parser-produced *types.Unresolved (or, for `()`,
// the already-concrete types.None the parser emits directly) into a
// concrete ExpressionType, consulting the struct/alias name tables built
// during forward registration for user-defined names.
func (r *Resolver) resolveType(t types.Type, loc lexer.SourceLocation) types.Type {
	u, ok := t.(*types.Unresolved)
	if !ok {
		return t // already concrete (e.g. types.None for `()`)
	}

	if prim, ok := primitiveNames[u.Name]; ok {
		return &types.Prim{Kind: prim}
	}

	if count, base, ok := vectorName(u.Name); ok {
		elem := types.F32
		if len(u.TemplateArgs) > 0 {
			if p, ok := r.resolveType(u.TemplateArgs[0], loc).(*types.Prim); ok {
				elem = p.Kind
			}
		}
		_ = base
		return &types.Vector{ComponentCount: count, Primitive: elem}
	}

	if cols, rows, ok := matrixName(u.Name); ok {
		if len(u.TemplateArgs) > 0 {
			r.resolveType(u.TemplateArgs[0], loc) // validated, matrices are f32-only in this pipeline
		}
		return &types.Matrix{Columns: cols, Rows: rows}
	}

	if u.Name == "array" && len(u.TemplateArgs) >= 1 {
		elem := r.resolveType(u.TemplateArgs[0], loc)
		var length uint32
		if len(u.TemplateArgs) >= 2 {
			if lit, ok := u.TemplateArgs[1].(*types.Unresolved); ok {
				if n, err := strconv.ParseUint(lit.Name, 10, 32); err == nil {
					length = uint32(n)
				}
			}
		}
		return &types.Array{Element: elem, Length: length}
	}

	if u.Name == "dyn_array" && len(u.TemplateArgs) >= 1 {
		return &types.DynArray{Element: r.resolveType(u.TemplateArgs[0], loc)}
	}

	if u.Name == "uniform" && len(u.TemplateArgs) >= 1 {
		return &types.Uniform{StructIndex: r.resolveExternalStructIndex(u.TemplateArgs[0], loc)}
	}
	if u.Name == "storage" && len(u.TemplateArgs) >= 1 {
		access := types.AccessReadOnly
		if len(u.TemplateArgs) >= 2 {
			if lit, ok := u.TemplateArgs[1].(*types.Unresolved); ok {
				access = accessModeByName(lit.Name)
			}
		}
		return &types.Storage{StructIndex: r.resolveExternalStructIndex(u.TemplateArgs[0], loc), Access: access}
	}
	if u.Name == "push_constant" && len(u.TemplateArgs) >= 1 {
		return &types.PushConstant{StructIndex: r.resolveExternalStructIndex(u.TemplateArgs[0], loc)}
	}

	if idx, ok := r.structsByName[u.Name]; ok {
		return &types.Struct{Index: idx}
	}
	if aliasType, ok := r.aliasesByName[u.Name]; ok {
		return aliasType
	}

	r.errorf(ErrUnknownType, loc, "unknown type %q", u.Name)
	return &types.Prim{Kind: types.I32} // best-effort recovery so the pass can keep going
}

// resolveExternalStructIndex resolves the struct-naming argument of a
// `uniform[...]`/`storage[...]`/`push_constant[...]` template to its
// declaration index within this module's Structs table. A name the
// resolver can't find (a typo, or a still-unimplemented cross-module
// qualified reference such as `M.Block`, §SPEC_FULL Open Questions)
// reports ErrUnknownType and falls back to index 0 so the pass can
// keep going rather than panic on an out-of-range Ref downstream.
func (r *Resolver) resolveExternalStructIndex(arg types.Type, loc lexer.SourceLocation) uint32 {
	u, ok := arg.(*types.Unresolved)
	if !ok {
		return 0
	}
	if idx, ok := r.structsByName[u.Name]; ok {
		return idx
	}
	r.errorf(ErrUnknownType, loc, "unknown struct %q", u.Name)
	return 0
}

func accessModeByName(name string) types.TextureAccess {
	switch name {
	case "writeonly":
		return types.AccessWriteOnly
	case "readwrite":
		return types.AccessReadWrite
	default:
		return types.AccessReadOnly
	}
}

// vectorName recognizes "vecN" type names (§3.3).
func vectorName(name string) (count int, base string, ok bool) {
	if !strings.HasPrefix(name, "vec") {
		return 0, "", false
	}
	n, err := strconv.Atoi(name[3:])
	if err != nil || n < 2 || n > 4 {
		return 0, "", false
	}
	return n, name, true
}

// matrixName recognizes "matN" (square) and "matCxR" type names.
func matrixName(name string) (cols, rows int, ok bool) {
	if !strings.HasPrefix(name, "mat") {
		return 0, 0, false
	}
	rest := name[3:]
	if i := strings.IndexByte(rest, 'x'); i >= 0 {
		c, err1 := strconv.Atoi(rest[:i])
		rw, err2 := strconv.Atoi(rest[i+1:])
		if err1 != nil || err2 != nil || c < 2 || c > 4 || rw < 2 || rw > 4 {
			return 0, 0, false
		}
		return c, rw, true
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 2 || n > 4 {
		return 0, 0, false
	}
	return n, n, true
}
