package spirv

import "encoding/binary"

// Writer assembles the fixed section order SPIR-V requires (§4.10.1):
// capabilities, extensions, ext-inst imports, memory model, entry
// points, execution modes, debug info, annotations, types/constants/
// globals, function bodies. Grounded on SpirvWriter.cpp's WriteHeader/
// WriteModule section ordering.
type Writer struct {
	Cache          *Cache
	AddressingModel uint32
	MemoryModel    uint32
	EntryPoints    []Instruction
	ExecutionModes []Instruction
	GlobalVars     []Instruction
	Functions      []Instruction
}

// NewWriter returns a Writer over cache, defaulting to the Logical
// addressing model and the Vulkan memory model (NZSL's SPIR-V target
// is Vulkan, per §4.10 "target environment").
func NewWriter(cache *Cache) *Writer {
	return &Writer{
		Cache:           cache,
		AddressingModel: AddressingModelLogical,
		MemoryModel:     MemoryModelVulkan,
	}
}

// AddEntryPoint records an OpEntryPoint instruction.
func (w *Writer) AddEntryPoint(instr Instruction) { w.EntryPoints = append(w.EntryPoints, instr) }

// AddExecutionMode records an OpExecutionMode instruction.
func (w *Writer) AddExecutionMode(instr Instruction) {
	w.ExecutionModes = append(w.ExecutionModes, instr)
}

// AddGlobalVariable records a module-scope OpVariable (externals and
// entry-point I/O).
func (w *Writer) AddGlobalVariable(instr Instruction) { w.GlobalVars = append(w.GlobalVars, instr) }

// AddFunction appends one function's full instruction stream
// (OpFunction .. OpFunctionEnd).
func (w *Writer) AddFunction(instrs []Instruction) { w.Functions = append(w.Functions, instrs...) }

// Assemble renders the complete module to its binary word stream
// (§4.10.1 header plus every section in order), little-endian per the
// magic number's conventional byte order.
func (w *Writer) Assemble(major, minor uint32) []byte {
	var words []uint32
	words = append(words, MagicNumber, MakeVersion(major, minor), GeneratorVendor, w.Cache.Bound(), 0)

	appendAll := func(instrs []Instruction) {
		for _, in := range instrs {
			words = append(words, in.Words()...)
		}
	}

	appendAll(w.Cache.Capabilities())
	appendAll(w.Cache.ExtInstImports())
	words = append(words, Instr(OpMemoryModel, Operand(w.AddressingModel), Operand(w.MemoryModel)).Words()...)
	appendAll(w.EntryPoints)
	appendAll(w.ExecutionModes)
	appendAll(w.Cache.Names())
	appendAll(w.Cache.Annotations())
	appendAll(w.Cache.TypeInstructions())
	appendAll(w.Cache.ConstInstructions())
	appendAll(w.GlobalVars)
	appendAll(w.Functions)

	buf := make([]byte, len(words)*4)
	for i, word := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], word)
	}
	return buf
}
