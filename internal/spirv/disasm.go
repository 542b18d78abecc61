package spirv

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// opcodeNames maps the opcode subset this backend emits (instr.go) back
// to its mnemonic, for Disassemble. Grounded on SpirvPrinter.cpp, which
// does the same "opcode -> name" lookup against the full Khronos table
// to render a human-readable instruction dump.
var opcodeNames = map[uint16]string{
	OpNop:                    "OpNop",
	OpSource:                 "OpSource",
	OpName:                   "OpName",
	OpMemberName:             "OpMemberName",
	OpString:                 "OpString",
	OpLine:                   "OpLine",
	OpExtension:              "OpExtension",
	OpExtInstImport:          "OpExtInstImport",
	OpExtInst:                "OpExtInst",
	OpMemoryModel:            "OpMemoryModel",
	OpEntryPoint:             "OpEntryPoint",
	OpExecutionMode:          "OpExecutionMode",
	OpCapability:             "OpCapability",
	OpTypeVoid:               "OpTypeVoid",
	OpTypeBool:               "OpTypeBool",
	OpTypeInt:                "OpTypeInt",
	OpTypeFloat:              "OpTypeFloat",
	OpTypeVector:             "OpTypeVector",
	OpTypeMatrix:             "OpTypeMatrix",
	OpTypeImage:              "OpTypeImage",
	OpTypeSampler:            "OpTypeSampler",
	OpTypeSampledImage:       "OpTypeSampledImage",
	OpTypeArray:              "OpTypeArray",
	OpTypeRuntimeArray:       "OpTypeRuntimeArray",
	OpTypeStruct:             "OpTypeStruct",
	OpTypePointer:            "OpTypePointer",
	OpTypeFunction:           "OpTypeFunction",
	OpConstantTrue:           "OpConstantTrue",
	OpConstantFalse:          "OpConstantFalse",
	OpConstant:               "OpConstant",
	OpConstantComposite:      "OpConstantComposite",
	OpFunction:               "OpFunction",
	OpFunctionParameter:      "OpFunctionParameter",
	OpFunctionEnd:            "OpFunctionEnd",
	OpFunctionCall:           "OpFunctionCall",
	OpVariable:               "OpVariable",
	OpLoad:                   "OpLoad",
	OpStore:                  "OpStore",
	OpCopyMemory:             "OpCopyMemory",
	OpAccessChain:            "OpAccessChain",
	OpArrayLength:            "OpArrayLength",
	OpDecorate:               "OpDecorate",
	OpMemberDecorate:         "OpMemberDecorate",
	OpVectorExtractDynamic:   "OpVectorExtractDynamic",
	OpVectorShuffle:          "OpVectorShuffle",
	OpCompositeConstruct:     "OpCompositeConstruct",
	OpCompositeExtract:       "OpCompositeExtract",
	OpTranspose:              "OpTranspose",
	OpSampledImage:           "OpSampledImage",
	OpImageSampleImplicitLod: "OpImageSampleImplicitLod",
	OpImageFetch:             "OpImageFetch",
	OpConvertFToU:            "OpConvertFToU",
	OpConvertFToS:            "OpConvertFToS",
	OpConvertSToF:            "OpConvertSToF",
	OpConvertUToF:            "OpConvertUToF",
	OpBitcast:                "OpBitcast",
	OpFNegate:                "OpFNegate",
	OpSNegate:                "OpSNegate",
	OpIAdd:                   "OpIAdd",
	OpFAdd:                   "OpFAdd",
	OpISub:                   "OpISub",
	OpFSub:                   "OpFSub",
	OpIMul:                   "OpIMul",
	OpFMul:                   "OpFMul",
	OpUDiv:                   "OpUDiv",
	OpSDiv:                   "OpSDiv",
	OpFDiv:                   "OpFDiv",
	OpUMod:                   "OpUMod",
	OpSMod:                   "OpSMod",
	OpFMod:                   "OpFMod",
	OpVectorTimesScalar:      "OpVectorTimesScalar",
	OpMatrixTimesScalar:      "OpMatrixTimesScalar",
	OpVectorTimesMatrix:      "OpVectorTimesMatrix",
	OpMatrixTimesVector:      "OpMatrixTimesVector",
	OpMatrixTimesMatrix:      "OpMatrixTimesMatrix",
	OpDot:                    "OpDot",
	OpLogicalEqual:           "OpLogicalEqual",
	OpLogicalNotEqual:        "OpLogicalNotEqual",
	OpLogicalOr:              "OpLogicalOr",
	OpLogicalAnd:             "OpLogicalAnd",
	OpLogicalNot:             "OpLogicalNot",
	OpSelect:                 "OpSelect",
	OpIEqual:                 "OpIEqual",
	OpINotEqual:              "OpINotEqual",
	OpUGreaterThan:           "OpUGreaterThan",
	OpSGreaterThan:           "OpSGreaterThan",
	OpUGreaterThanEqual:      "OpUGreaterThanEqual",
	OpSGreaterThanEqual:      "OpSGreaterThanEqual",
	OpULessThan:              "OpULessThan",
	OpSLessThan:              "OpSLessThan",
	OpULessThanEqual:         "OpULessThanEqual",
	OpSLessThanEqual:         "OpSLessThanEqual",
	OpFOrdEqual:              "OpFOrdEqual",
	OpFOrdNotEqual:           "OpFOrdNotEqual",
	OpFOrdLessThan:           "OpFOrdLessThan",
	OpFOrdGreaterThan:        "OpFOrdGreaterThan",
	OpFOrdLessThanEqual:      "OpFOrdLessThanEqual",
	OpFOrdGreaterThanEqual:   "OpFOrdGreaterThanEqual",
	OpShiftRightLogical:      "OpShiftRightLogical",
	OpShiftRightArithmetic:   "OpShiftRightArithmetic",
	OpShiftLeftLogical:       "OpShiftLeftLogical",
	OpBitwiseOr:              "OpBitwiseOr",
	OpBitwiseXor:             "OpBitwiseXor",
	OpBitwiseAnd:             "OpBitwiseAnd",
	OpNot:                    "OpNot",
	OpPhi:                    "OpPhi",
	OpLoopMerge:              "OpLoopMerge",
	OpSelectionMerge:         "OpSelectionMerge",
	OpLabel:                  "OpLabel",
	OpBranch:                 "OpBranch",
	OpBranchConditional:      "OpBranchConditional",
	OpKill:                   "OpKill",
	OpReturn:                 "OpReturn",
	OpReturnValue:            "OpReturnValue",
	OpUnreachable:            "OpUnreachable",
}

// Disassemble renders an assembled SPIR-V binary module as a flat,
// one-instruction-per-line textual listing: `%id = OpFoo operand
// operand ...` for instructions with a result id, `OpFoo operand ...`
// otherwise. This is the `spv-dis` output format (§6.1's `-c` flag
// table); it is a structural dump for inspection, not a reassembleable
// SPIR-V disassembly syntax like spirv-dis's.
//
// Result-id position is opcode-specific in the real grammar; this
// disassembler only needs to be readable; it shows the operand word
// resultOperandIndex names as the %id when the opcode is known to define one, and
// otherwise lists every operand word plainly. Grounded on
// SpirvPrinter.cpp's instruction-by-instruction dump, simplified since
// that printer's grammar table (one row per opcode, with an explicit
// operand-kind list) has no equivalent already built in this backend.
func Disassemble(data []byte) string {
	var sb strings.Builder
	if len(data) < 20 {
		return ""
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	fmt.Fprintf(&sb, "; SPIR-V\n; Version: %#x\n; Generator: %#x\n; Bound: %d\n", words[1], words[2], words[3])

	i := 5
	for i < len(words) {
		wordCount := int(words[i] >> 16)
		op := uint16(words[i] & 0xFFFF)
		if wordCount == 0 || i+wordCount > len(words) {
			break
		}
		operands := words[i+1 : i+wordCount]
		name, known := opcodeNames[op]
		if !known {
			name = fmt.Sprintf("Op#%d", op)
		}

		resultPos := resultOperandIndex(op)
		if resultPos >= 0 && resultPos < len(operands) {
			rest := make([]string, 0, len(operands)-1)
			for j, w := range operands {
				if j == resultPos {
					continue
				}
				rest = append(rest, fmt.Sprintf("%d", w))
			}
			fmt.Fprintf(&sb, "%%%d = %s %s\n", operands[resultPos], name, strings.Join(rest, " "))
		} else {
			parts := make([]string, len(operands))
			for j, w := range operands {
				parts[j] = fmt.Sprintf("%d", w)
			}
			fmt.Fprintf(&sb, "%s %s\n", name, strings.Join(parts, " "))
		}
		i += wordCount
	}
	return sb.String()
}

// resultOperandIndex returns the word offset (within an instruction's
// operand list, after the opcode/wordcount header) that carries the
// result id for opcodes this backend actually emits with one, or -1
// for opcodes with no result id (or one this dump doesn't bother
// distinguishing, e.g. OpEntryPoint's execution-model/id/name/operands
// mix).
func resultOperandIndex(op uint16) int {
	switch op {
	case OpTypeVoid, OpTypeBool, OpString, OpExtInstImport,
		OpTypeInt, OpTypeFloat, OpTypeVector, OpTypeMatrix, OpTypeImage,
		OpTypeSampler, OpTypeSampledImage, OpTypeArray, OpTypeRuntimeArray,
		OpTypeStruct, OpTypePointer, OpTypeFunction:
		return 0
	case OpConstantTrue, OpConstantFalse, OpConstant, OpConstantComposite,
		OpFunction, OpFunctionParameter, OpFunctionCall, OpVariable,
		OpLoad, OpAccessChain, OpArrayLength, OpVectorExtractDynamic,
		OpVectorShuffle, OpCompositeConstruct, OpCompositeExtract,
		OpTranspose, OpSampledImage, OpImageSampleImplicitLod, OpImageFetch,
		OpConvertFToU, OpConvertFToS, OpConvertSToF, OpConvertUToF, OpBitcast,
		OpFNegate, OpSNegate, OpIAdd, OpFAdd, OpISub, OpFSub, OpIMul, OpFMul,
		OpUDiv, OpSDiv, OpFDiv, OpUMod, OpSMod, OpFMod,
		OpVectorTimesScalar, OpMatrixTimesScalar, OpVectorTimesMatrix,
		OpMatrixTimesVector, OpMatrixTimesMatrix, OpDot,
		OpLogicalEqual, OpLogicalNotEqual, OpLogicalOr, OpLogicalAnd, OpLogicalNot,
		OpSelect, OpIEqual, OpINotEqual, OpUGreaterThan, OpSGreaterThan,
		OpUGreaterThanEqual, OpSGreaterThanEqual, OpULessThan, OpSLessThan,
		OpULessThanEqual, OpSLessThanEqual, OpFOrdEqual, OpFOrdNotEqual,
		OpFOrdLessThan, OpFOrdGreaterThan, OpFOrdLessThanEqual, OpFOrdGreaterThanEqual,
		OpShiftRightLogical, OpShiftRightArithmetic, OpShiftLeftLogical,
		OpBitwiseOr, OpBitwiseXor, OpBitwiseAnd, OpNot, OpPhi, OpExtInst:
		return 1
	default:
		return -1
	}
}
