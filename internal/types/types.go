// Package types defines ExpressionType, the closed type-system sum used
// throughout resolution, constant folding, validation and code
// generation (§3.3).
package types

import "fmt"

// Type is the sealed interface implemented by every ExpressionType
// variant. Equals compares structurally, not by identity.
type Type interface {
	isType()
	String() string
	Equals(other Type) bool
}

// ----------------------------------------------------------------------------
// NoType
// ----------------------------------------------------------------------------

// None is the type of the empty parenthesized pair `()` and of
// statements/declarations with no value.
type None struct{}

func (*None) isType()          {}
func (*None) String() string   { return "()" }
func (n *None) Equals(o Type) bool {
	_, ok := o.(*None)
	return ok
}

// ----------------------------------------------------------------------------
// Primitives
// ----------------------------------------------------------------------------

// Primitive is a scalar base type, including the two untyped literal
// kinds used only before narrowing (§3.3, §4.7).
type Primitive uint8

const (
	Bool Primitive = iota
	F32
	F64
	I32
	U32
	Str
	IntLiteral   // untyped integer literal, narrows on first concrete use
	FloatLiteral // untyped float literal, narrows on first concrete use
)

func (p Primitive) String() string {
	switch p {
	case Bool:
		return "bool"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case Str:
		return "string"
	case IntLiteral:
		return "{integer}"
	case FloatLiteral:
		return "{float}"
	}
	return "?"
}

// IsUntyped reports whether p is one of the two untyped literal kinds.
func (p Primitive) IsUntyped() bool { return p == IntLiteral || p == FloatLiteral }

// IsNumeric reports whether p supports arithmetic.
func (p Primitive) IsNumeric() bool {
	switch p {
	case F32, F64, I32, U32, IntLiteral, FloatLiteral:
		return true
	}
	return false
}

// IsInteger reports whether p is one of the integer kinds.
func (p Primitive) IsInteger() bool {
	return p == I32 || p == U32 || p == IntLiteral
}

// IsFloat reports whether p is one of the floating kinds.
func (p Primitive) IsFloat() bool {
	return p == F32 || p == F64 || p == FloatLiteral
}

// Prim wraps a Primitive as an ExpressionType.
type Prim struct{ Kind Primitive }

func (*Prim) isType()              {}
func (p *Prim) String() string     { return p.Kind.String() }
func (p *Prim) Equals(o Type) bool {
	op, ok := o.(*Prim)
	return ok && op.Kind == p.Kind
}

// ----------------------------------------------------------------------------
// Vector / Matrix
// ----------------------------------------------------------------------------

// Vector is Vector{component_count, primitive} (§3.3); ComponentCount is
// 2, 3, or 4.
type Vector struct {
	ComponentCount int
	Primitive      Primitive
}

func (*Vector) isType() {}
func (v *Vector) String() string {
	return fmt.Sprintf("vec%d[%s]", v.ComponentCount, v.Primitive)
}
func (v *Vector) Equals(o Type) bool {
	ov, ok := o.(*Vector)
	return ok && ov.ComponentCount == v.ComponentCount && ov.Primitive == v.Primitive
}

// Matrix is Matrix{columns, rows, primitive}.
type Matrix struct {
	Columns   int
	Rows      int
	Primitive Primitive
}

func (*Matrix) isType() {}
func (m *Matrix) String() string {
	return fmt.Sprintf("mat%dx%d[%s]", m.Columns, m.Rows, m.Primitive)
}
func (m *Matrix) Equals(o Type) bool {
	om, ok := o.(*Matrix)
	return ok && om.Columns == m.Columns && om.Rows == m.Rows && om.Primitive == m.Primitive
}

// ----------------------------------------------------------------------------
// Arrays
// ----------------------------------------------------------------------------

// Array is a fixed-length array type; Length is the element count.
type Array struct {
	Element Type
	Length  uint32
}

func (*Array) isType() {}
func (a *Array) String() string {
	return fmt.Sprintf("array[%s, %d]", a.Element, a.Length)
}
func (a *Array) Equals(o Type) bool {
	oa, ok := o.(*Array)
	return ok && oa.Length == a.Length && a.Element.Equals(oa.Element)
}

// DynArray is a runtime-sized array, legal only as the last member of a
// storage-bound struct.
type DynArray struct{ Element Type }

func (*DynArray) isType()        {}
func (a *DynArray) String() string { return fmt.Sprintf("dyn_array[%s]", a.Element) }
func (a *DynArray) Equals(o Type) bool {
	oa, ok := o.(*DynArray)
	return ok && a.Element.Equals(oa.Element)
}

// ----------------------------------------------------------------------------
// Indexed entities (struct/alias/function/method/intrinsic/module/named external)
// ----------------------------------------------------------------------------

// Struct references a declared struct by its dense symbol-table index
// (§3.6).
type Struct struct{ Index uint32 }

func (*Struct) isType()          {}
func (s *Struct) String() string { return fmt.Sprintf("struct#%d", s.Index) }
func (s *Struct) Equals(o Type) bool {
	os, ok := o.(*Struct)
	return ok && os.Index == s.Index
}

// Alias{index, target}: a named synonym, transparent to type equality
// after ResolveAlias (§3.3 invariant: idempotent under ResolveAlias).
type Alias struct {
	Index  uint32
	Target Type
}

func (*Alias) isType()          {}
func (a *Alias) String() string { return fmt.Sprintf("alias#%d->%s", a.Index, a.Target) }
func (a *Alias) Equals(o Type) bool {
	return ResolveAlias(a).Equals(ResolveAlias(o))
}

// ResolveAlias follows the Target chain to the first non-alias type.
// Applying it twice in a row is a no-op (idempotent, per the §3.3
// invariant).
func ResolveAlias(t Type) Type {
	for {
		a, ok := t.(*Alias)
		if !ok {
			return t
		}
		t = a.Target
	}
}

// Function references a declared function by index.
type Function struct{ Index uint32 }

func (*Function) isType()          {}
func (f *Function) String() string { return fmt.Sprintf("fn#%d", f.Index) }
func (f *Function) Equals(o Type) bool {
	of, ok := o.(*Function)
	return ok && of.Index == f.Index
}

// Method is the type of `obj.method` before the call is applied.
type Method struct {
	Object       Type
	MethodIndex  uint32
}

func (*Method) isType()          {}
func (m *Method) String() string { return fmt.Sprintf("method#%d(%s)", m.MethodIndex, m.Object) }
func (m *Method) Equals(o Type) bool {
	om, ok := o.(*Method)
	return ok && om.MethodIndex == m.MethodIndex && m.Object.Equals(om.Object)
}

// Intrinsic is the type of an unapplied built-in function reference.
type Intrinsic struct{ ID uint32 }

func (*Intrinsic) isType()          {}
func (i *Intrinsic) String() string { return fmt.Sprintf("intrinsic#%d", i.ID) }
func (i *Intrinsic) Equals(o Type) bool {
	oi, ok := o.(*Intrinsic)
	return ok && oi.ID == i.ID
}

// Module is the type of a resolved `import ... as M` binding.
type Module struct{ Index uint32 }

func (*Module) isType()          {}
func (m *Module) String() string { return fmt.Sprintf("module#%d", m.Index) }
func (m *Module) Equals(o Type) bool {
	om, ok := o.(*Module)
	return ok && om.Index == m.Index
}

// NamedExternalBlock is the type of an `external { ... }` block
// referenced by name (as opposed to its individual members).
type NamedExternalBlock struct{ Index uint32 }

func (*NamedExternalBlock) isType()          {}
func (b *NamedExternalBlock) String() string { return fmt.Sprintf("external_block#%d", b.Index) }
func (b *NamedExternalBlock) Equals(o Type) bool {
	ob, ok := o.(*NamedExternalBlock)
	return ok && ob.Index == b.Index
}

// TypeOf is the type of a type expression used as a value (e.g. the
// `M.Block` operand of `uniform[M.Block]`).
type TypeOf struct{ Index uint32 }

func (*TypeOf) isType()          {}
func (t *TypeOf) String() string { return fmt.Sprintf("type#%d", t.Index) }
func (t *TypeOf) Equals(o Type) bool {
	ot, ok := o.(*TypeOf)
	return ok && ot.Index == t.Index
}

// ----------------------------------------------------------------------------
// Resource types
// ----------------------------------------------------------------------------

// SamplerDim is the texture coordinate dimensionality a sampler/texture
// operates over.
type SamplerDim uint8

const (
	Dim1D SamplerDim = iota
	Dim2D
	Dim2DArray
	Dim3D
	DimCube
	DimCubeArray
)

// Sampler is Sampler{dim, sampled_primitive, depth?} (§3.3).
type Sampler struct {
	Dim             SamplerDim
	SampledPrimitive Primitive
	Depth           bool
}

func (*Sampler) isType() {}
func (s *Sampler) String() string {
	if s.Depth {
		return fmt.Sprintf("sampler_depth%d", s.Dim)
	}
	return fmt.Sprintf("sampler%d[%s]", s.Dim, s.SampledPrimitive)
}
func (s *Sampler) Equals(o Type) bool {
	os, ok := o.(*Sampler)
	return ok && os.Dim == s.Dim && os.SampledPrimitive == s.SampledPrimitive && os.Depth == s.Depth
}

// TextureAccess is the access mode declared for a storage texture.
type TextureAccess uint8

const (
	AccessReadOnly TextureAccess = iota
	AccessWriteOnly
	AccessReadWrite
)

// TextureFormat is the texel format of a storage texture (a subset of
// the common WGSL/Vulkan storage formats, e.g. rgba8unorm).
type TextureFormat uint8

const (
	FormatUnknown TextureFormat = iota
	FormatRGBA8Unorm
	FormatRGBA8Snorm
	FormatRGBA16Float
	FormatRGBA32Float
	FormatR32Float
	FormatR32Uint
	FormatR32Sint
)

// Texture is the Texture{dim, format, base, access} sampled/storage
// texture type.
type Texture struct {
	Dim    SamplerDim
	Format TextureFormat
	Base   Primitive
	Access TextureAccess
}

func (*Texture) isType() {}
func (t *Texture) String() string {
	return fmt.Sprintf("texture%d[%s]", t.Dim, t.Base)
}
func (t *Texture) Equals(o Type) bool {
	ot, ok := o.(*Texture)
	return ok && ot.Dim == t.Dim && ot.Format == t.Format && ot.Base == t.Base && ot.Access == t.Access
}

// Storage, Uniform and PushConstant wrap a struct index for an external
// binding's resource category (§3.3).
type Storage struct {
	StructIndex uint32
	Access      TextureAccess
}

func (*Storage) isType()          {}
func (s *Storage) String() string { return fmt.Sprintf("storage[struct#%d]", s.StructIndex) }
func (s *Storage) Equals(o Type) bool {
	os, ok := o.(*Storage)
	return ok && os.StructIndex == s.StructIndex && os.Access == s.Access
}

type Uniform struct{ StructIndex uint32 }

func (*Uniform) isType()          {}
func (u *Uniform) String() string { return fmt.Sprintf("uniform[struct#%d]", u.StructIndex) }
func (u *Uniform) Equals(o Type) bool {
	ou, ok := o.(*Uniform)
	return ok && ou.StructIndex == u.StructIndex
}

type PushConstant struct{ StructIndex uint32 }

func (*PushConstant) isType()          {}
func (p *PushConstant) String() string { return fmt.Sprintf("push_constant[struct#%d]", p.StructIndex) }
func (p *PushConstant) Equals(o Type) bool {
	op, ok := o.(*PushConstant)
	return ok && op.StructIndex == p.StructIndex
}

// ----------------------------------------------------------------------------
// Implicit partial types (inference-only, §3.3)
// ----------------------------------------------------------------------------

// ImplicitVector stands in for "a vector of N components of unknown
// element type" while inferring a vector constructor call's argument
// types; it never survives into cached_expression_type after resolution.
type ImplicitVector struct{ ComponentCount int }

func (*ImplicitVector) isType()          {}
func (v *ImplicitVector) String() string { return fmt.Sprintf("implicit vec%d", v.ComponentCount) }
func (v *ImplicitVector) Equals(o Type) bool {
	ov, ok := o.(*ImplicitVector)
	return ok && ov.ComponentCount == v.ComponentCount
}

// ImplicitMatrix is the matrix analogue of ImplicitVector.
type ImplicitMatrix struct{ Columns, Rows int }

func (*ImplicitMatrix) isType() {}
func (m *ImplicitMatrix) String() string {
	return fmt.Sprintf("implicit mat%dx%d", m.Columns, m.Rows)
}
func (m *ImplicitMatrix) Equals(o Type) bool {
	om, ok := o.(*ImplicitMatrix)
	return ok && om.Columns == m.Columns && om.Rows == m.Rows
}

// ImplicitArray stands in for an array constructor before its element
// count and type are both known.
type ImplicitArray struct{}

func (*ImplicitArray) isType()          {}
func (*ImplicitArray) String() string   { return "implicit array" }
func (a *ImplicitArray) Equals(o Type) bool {
	_, ok := o.(*ImplicitArray)
	return ok
}

// Unresolved is the parser's placeholder for a type as written in
// source, before the identifier/type resolver (C6) has turned a name
// into a concrete ExpressionType. Name is the base identifier (possibly
// dotted through a module alias); TemplateArgs holds bracketed
// arguments for parametric forms (`array[T, N]`, `vec3[f32]`,
// `sampler2D[f32]`), a bare length such as N being carried as an
// Unresolved whose Name is its literal text; `array[T, N]` and
// `dyn_array[T]` differ by Name. It must never survive into a node's final
// cached type (§3.3 invariant) — C6 always replaces it.
type Unresolved struct {
	Name         string
	TemplateArgs []Type
}

func (*Unresolved) isType()          {}
func (u *Unresolved) String() string { return "unresolved(" + u.Name + ")" }
func (u *Unresolved) Equals(o Type) bool {
	ou, ok := o.(*Unresolved)
	return ok && ou.Name == u.Name
}

// IsImplicit reports whether t is one of the inference-only partial
// types; after resolution no node's cached type may satisfy this.
func IsImplicit(t Type) bool {
	switch t.(type) {
	case *ImplicitVector, *ImplicitMatrix, *ImplicitArray, *Unresolved:
		return true
	}
	return false
}

// IsUntypedLiteral reports whether t is the untyped IntLiteral/FloatLiteral
// primitive, or a vector thereof.
func IsUntypedLiteral(t Type) bool {
	switch tt := t.(type) {
	case *Prim:
		return tt.Kind.IsUntyped()
	case *Vector:
		return tt.Primitive.IsUntyped()
	}
	return false
}

// IsConcrete reports whether t is legal as a node's final
// cached_expression_type: no implicit types, no untyped literals.
func IsConcrete(t Type) bool {
	return !IsImplicit(t) && !IsUntypedLiteral(t)
}
