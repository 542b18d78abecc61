package types

import "testing"

func TestAliasResolutionIsIdempotent(t *testing.T) {
	base := &Prim{Kind: F32}
	inner := &Alias{Index: 1, Target: base}
	outer := &Alias{Index: 2, Target: inner}

	once := ResolveAlias(outer)
	twice := ResolveAlias(once)

	if !once.Equals(base) {
		t.Fatalf("expected resolved alias to equal base, got %s", once)
	}
	if !once.Equals(twice) {
		t.Fatalf("ResolveAlias is not idempotent: once=%s twice=%s", once, twice)
	}
}

func TestAliasEqualsComparesResolvedTargets(t *testing.T) {
	f32 := &Prim{Kind: F32}
	a := &Alias{Index: 1, Target: f32}
	b := &Alias{Index: 2, Target: f32}

	if !a.Equals(b) {
		t.Fatal("two aliases resolving to the same type should be equal")
	}
}

func TestIsConcreteRejectsImplicitAndUntyped(t *testing.T) {
	tests := []struct {
		name     string
		typ      Type
		concrete bool
	}{
		{"f32 is concrete", &Prim{Kind: F32}, true},
		{"untyped int literal is not concrete", &Prim{Kind: IntLiteral}, false},
		{"implicit vector is not concrete", &ImplicitVector{ComponentCount: 3}, false},
		{"vec3 of untyped float is not concrete", &Vector{ComponentCount: 3, Primitive: FloatLiteral}, false},
		{"vec3 f32 is concrete", &Vector{ComponentCount: 3, Primitive: F32}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsConcrete(tc.typ); got != tc.concrete {
				t.Fatalf("IsConcrete(%s) = %v, want %v", tc.typ, got, tc.concrete)
			}
		})
	}
}

func TestVectorAndMatrixEquals(t *testing.T) {
	v1 := &Vector{ComponentCount: 3, Primitive: F32}
	v2 := &Vector{ComponentCount: 3, Primitive: F32}
	v3 := &Vector{ComponentCount: 4, Primitive: F32}
	if !v1.Equals(v2) {
		t.Fatal("identical vectors should be equal")
	}
	if v1.Equals(v3) {
		t.Fatal("vectors with different component counts should not be equal")
	}

	m1 := &Matrix{Columns: 4, Rows: 4, Primitive: F32}
	m2 := &Matrix{Columns: 4, Rows: 4, Primitive: F32}
	if !m1.Equals(m2) {
		t.Fatal("identical matrices should be equal")
	}
}
