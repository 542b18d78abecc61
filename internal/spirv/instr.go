package spirv

// Instruction is one SPIR-V instruction prior to word-count framing:
// an opcode plus its operand words in source order (result type/result
// id words included, in whatever position the opcode's layout puts
// them — SPIR-V's physical encoding has no separate "this is a result"
// marker, only the logical grammar in the spec does).
type Instruction struct {
	Op       uint16
	Operands []Operand2
}

// Operand2 is one instruction operand, already expanded to its literal
// word(s) — a plain numeric operand is one word, a literal string
// operand is the UTF-8 bytes, NUL-terminated and zero-padded to a word
// boundary (§2.2.1 of the SPIR-V spec).
type Operand2 struct{ words []uint32 }

// Operand wraps a single-word numeric operand (an id, a literal
// integer, an enumerant value).
func Operand(v uint32) Operand2 { return Operand2{words: []uint32{v}} }

// ResultOperand wraps a result id operand. Encoded identically to
// Operand; the distinct name documents intent at call sites (mirrors
// SpirvAstVisitor.cpp's convention of a separate `resultId` parameter
// even though the wire encoding is just another word).
func ResultOperand(id ID) Operand2 { return Operand2{words: []uint32{uint32(id)}} }

// StringOperand encodes s as a SPIR-V literal string operand.
func StringOperand(s string) Operand2 {
	b := append([]byte(s), 0)
	n := (len(b) + 3) / 4
	words := make([]uint32, n)
	for i, c := range b {
		words[i/4] |= uint32(c) << uint((i%4)*8)
	}
	return Operand2{words: words}
}

// Instr builds an Instruction from an opcode and its operands.
func Instr(op uint16, operands ...Operand2) Instruction {
	return Instruction{Op: op, Operands: operands}
}

// Words renders the instruction as its final word stream, including
// the leading opcode|wordCount<<16 header word (§2.2.1).
func (instr Instruction) Words() []uint32 {
	wordCount := 1
	for _, o := range instr.Operands {
		wordCount += len(o.words)
	}
	out := make([]uint32, 0, wordCount)
	out = append(out, uint32(wordCount)<<16|uint32(instr.Op))
	for _, o := range instr.Operands {
		out = append(out, o.words...)
	}
	return out
}

// ----------------------------------------------------------------------------
// SPIR-V opcodes (a subset of SpirvOp in SpirvData.hpp — the published
// Khronos opcode table, not project-specific numbering).
// ----------------------------------------------------------------------------
const (
	OpNop               = 0
	OpSource            = 3
	OpName              = 5
	OpMemberName        = 6
	OpString            = 7
	OpLine              = 8
	OpExtension         = 10
	OpExtInstImport     = 11
	OpExtInst           = 12
	OpMemoryModel       = 14
	OpEntryPoint        = 15
	OpExecutionMode     = 16
	OpCapability        = 17
	OpTypeVoid          = 19
	OpTypeBool          = 20
	OpTypeInt           = 21
	OpTypeFloat         = 22
	OpTypeVector        = 23
	OpTypeMatrix        = 24
	OpTypeImage         = 25
	OpTypeSampler       = 26
	OpTypeSampledImage  = 27
	OpTypeArray         = 28
	OpTypeRuntimeArray  = 29
	OpTypeStruct        = 30
	OpTypePointer       = 32
	OpTypeFunction      = 33
	OpConstantTrue      = 41
	OpConstantFalse     = 42
	OpConstant          = 43
	OpConstantComposite = 44
	OpFunction          = 54
	OpFunctionParameter = 55
	OpFunctionEnd       = 56
	OpFunctionCall      = 57
	OpVariable          = 59
	OpLoad              = 61
	OpStore             = 62
	OpCopyMemory        = 63
	OpAccessChain       = 65
	OpArrayLength       = 68
	OpDecorate          = 71
	OpMemberDecorate    = 72
	OpVectorExtractDynamic = 77
	OpVectorShuffle     = 79
	OpCompositeConstruct = 80
	OpCompositeExtract  = 81
	OpTranspose         = 84
	OpSampledImage      = 86
	OpImageSampleImplicitLod = 87
	OpImageFetch        = 95
	OpConvertFToU       = 109
	OpConvertFToS       = 110
	OpConvertSToF       = 111
	OpConvertUToF       = 112
	OpBitcast           = 124
	OpFNegate           = 127
	OpSNegate           = 126
	OpIAdd              = 128
	OpFAdd              = 129
	OpISub              = 130
	OpFSub              = 131
	OpIMul              = 132
	OpFMul              = 133
	OpUDiv              = 134
	OpSDiv              = 135
	OpFDiv              = 136
	OpUMod              = 137
	OpSMod              = 139
	OpFMod              = 141
	OpVectorTimesScalar = 142
	OpMatrixTimesScalar = 143
	OpVectorTimesMatrix = 144
	OpMatrixTimesVector = 145
	OpMatrixTimesMatrix = 146
	OpDot               = 148
	OpLogicalOr         = 166
	OpLogicalAnd        = 167
	OpLogicalNot        = 168
	OpLogicalEqual      = 164
	OpLogicalNotEqual   = 165
	OpSelect            = 169
	OpIEqual            = 170
	OpINotEqual         = 171
	OpUGreaterThan      = 172
	OpSGreaterThan      = 173
	OpUGreaterThanEqual = 174
	OpSGreaterThanEqual = 175
	OpULessThan         = 176
	OpSLessThan         = 177
	OpULessThanEqual    = 178
	OpSLessThanEqual    = 179
	OpFOrdEqual         = 180
	OpFOrdNotEqual      = 182
	OpFOrdLessThan      = 184
	OpFOrdGreaterThan   = 186
	OpFOrdLessThanEqual = 188
	OpFOrdGreaterThanEqual = 190
	OpShiftRightLogical = 194
	OpShiftRightArithmetic = 195
	OpShiftLeftLogical  = 196
	OpBitwiseOr         = 197
	OpBitwiseXor        = 198
	OpBitwiseAnd        = 199
	OpNot               = 200
	OpPhi               = 245
	OpLoopMerge         = 246
	OpSelectionMerge    = 247
	OpLabel             = 248
	OpBranch            = 249
	OpBranchConditional = 250
	OpReturn            = 253
	OpReturnValue       = 254
	OpUnreachable       = 255
	OpKill              = 252
)

// ----------------------------------------------------------------------------
// Enumerants (SpirvExecutionModel, SpirvAddressingModel, SpirvMemoryModel,
// SpirvExecutionMode, SpirvStorageClass, SpirvDecoration, SpirvBuiltIn,
// SpirvDim — same published Khronos values as SpirvData.hpp).
// ----------------------------------------------------------------------------
const (
	ExecutionModelVertex   = 0
	ExecutionModelFragment = 4
	ExecutionModelGLCompute = 5
)

const (
	AddressingModelLogical = 0
)

const (
	MemoryModelGLSL450 = 1
	MemoryModelVulkan  = 3
)

const (
	ExecutionModeOriginUpperLeft = 7
	ExecutionModeEarlyFragmentTests = 9
	ExecutionModeDepthReplacing  = 12
	ExecutionModeLocalSize       = 17
)

const (
	StorageClassUniformConstant = 0
	StorageClassInput           = 1
	StorageClassUniform         = 2
	StorageClassOutput          = 3
	StorageClassFunction        = 7
	StorageClassPushConstant    = 9
	StorageClassStorageBuffer   = 12
)

const (
	DimDim1D   = 0
	DimDim2D   = 1
	DimDim3D   = 2
	DimCube    = 3
)

const (
	DecorationColMajor      = 5
	DecorationArrayStride   = 6
	DecorationMatrixStride  = 7
	DecorationBuiltIn       = 11
	DecorationLocation      = 30
	DecorationBinding       = 33
	DecorationDescriptorSet = 34
	DecorationOffset        = 35
	DecorationBlock         = 2
)

const (
	BuiltInPosition     = 0
	BuiltInVertexIndex  = 42
	BuiltInInstanceIndex = 43
	BuiltInFragCoord    = 15
	BuiltInFrontFacing  = 17
	BuiltInFragDepth    = 22
	BuiltInLocalInvocationId = 27
	BuiltInGlobalInvocationId = 28
)
