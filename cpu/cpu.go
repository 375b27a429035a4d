// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"io"
	"iter"
	"log"
	"slices"
	"strings"
)

// Cpu is the simulation context for the S12 processor.
//
// The zero value is a reset processor. Step is the only mutator besides
// Reset and Load; a Cpu must not be stepped from more than one goroutine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	pc     uint8          // Program counter.
	acc    Word           // Accumulator.
	memory [MEM_SIZE]Word // Memory words.
	halted bool           // Set by HALT, cleared by Reset.
	cycles int            // Executed instruction counter.
	trace  []Trace        // One record per executed instruction.
}

// NewCpu creates a new, reset, CPU.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// Status is a snapshot of the processor registers.
type Status struct {
	Pc     uint8
	Acc    Word
	Cycles int
	Halted bool
}

// Pc returns the program counter.
func (cpu *Cpu) Pc() uint8 { return cpu.pc }

// Acc returns the accumulator.
func (cpu *Cpu) Acc() Word { return cpu.acc }

// Cycles returns the number of executed instructions since the last reset.
func (cpu *Cpu) Cycles() int { return cpu.cycles }

// Halted returns true once a HALT has executed.
func (cpu *Cpu) Halted() bool { return cpu.halted }

// Status returns a snapshot of the registers.
func (cpu *Cpu) Status() Status {
	return Status{
		Pc:     cpu.pc,
		Acc:    cpu.acc,
		Cycles: cpu.cycles,
		Halted: cpu.halted,
	}
}

// Peek returns the memory word at an address.
func (cpu *Cpu) Peek(addr uint8) Word {
	return cpu.memory[addr]
}

// Memory returns an iterator over every address and its word.
func (cpu *Cpu) Memory() iter.Seq2[uint8, Word] {
	return func(yield func(addr uint8, word Word) bool) {
		for addr, word := range cpu.memory {
			if !yield(uint8(addr), word) {
				return
			}
		}
	}
}

// Registers returns an iterator over the register names and values.
func (cpu *Cpu) Registers() iter.Seq2[string, int] {
	return func(yield func(name string, value int) bool) {
		_ = yield("pc", int(cpu.pc)) &&
			yield("acc", int(cpu.acc)) &&
			yield("cycles", cpu.cycles)
	}
}

// Trace returns a copy of the execution trace.
func (cpu *Cpu) Trace() []Trace {
	return slices.Clone(cpu.trace)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 6s: %02X\n", "pc", cpu.pc)
	text += fmt.Sprintf("% 6s: %v (%d)\n", "acc", cpu.acc.Binary(), cpu.acc.Signed())
	text += fmt.Sprintf("% 6s: %d\n", "cycles", cpu.cycles)
	text += fmt.Sprintf("% 6s: %v\n", "halted", cpu.halted)

	return
}

// MemState returns the memory contents as text, one 'HH WWWWWWWWWWWW'
// line per address.
func (cpu *Cpu) MemState() string {
	var sb strings.Builder
	sb.Grow(MEM_SIZE * 16)
	for addr, word := range cpu.Memory() {
		fmt.Fprintf(&sb, "%02X %v\n", addr, word.Binary())
	}
	return sb.String()
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Zeros the cycle counter and the trace.
// - Leaves the halted state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.pc = 0
	cpu.acc = 0
	clear(cpu.memory[:])
	cpu.halted = false
	cpu.cycles = 0
	cpu.trace = nil
}

// Fail resets the CPU and leaves it halted, as after a failed load.
func (cpu *Cpu) Fail() {
	cpu.Reset()
	cpu.halted = true
}

// Load resets the CPU, then applies the image registers and memory.
func (cpu *Cpu) Load(img *Image) {
	cpu.Reset()

	cpu.pc = img.Pc
	cpu.acc = img.Acc & WORD_MASK
	for addr, word := range img.Memory {
		cpu.memory[addr] = word & WORD_MASK
	}

	if cpu.Verbose {
		log.Printf("cpu: load pc=%02X acc=%v", cpu.pc, cpu.acc.Binary())
	}
}

// LoadFrom parses a memory image and loads it. On failure the CPU is
// reset and left halted, so that Step does nothing.
func (cpu *Cpu) LoadFrom(input io.Reader) (err error) {
	parser := &Parser{Verbose: cpu.Verbose}
	img, err := parser.Parse(input)
	if err != nil {
		cpu.Fail()
		return
	}

	cpu.Load(img)

	return
}

// Image returns a memory image of the current state.
func (cpu *Cpu) Image() (img *Image) {
	img = &Image{
		Pc:     cpu.pc,
		Acc:    cpu.acc,
		Memory: cpu.memory,
	}

	return
}

// WriteMemory writes the current state as a memory image.
func (cpu *Cpu) WriteMemory(w io.Writer) (err error) {
	_, err = cpu.Image().WriteTo(w)
	return
}

// WriteTrace writes the execution trace, one line per executed instruction.
func (cpu *Cpu) WriteTrace(w io.Writer) (err error) {
	return WriteTrace(w, cpu.trace)
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() Code {
	return Code(cpu.memory[cpu.pc] & WORD_MASK)
}

// Step executes a single instruction, and returns the instruction fetched.
// A halted CPU does nothing and returns the zero Code; use Halted to tell
// that apart from an executed JMP 00.
func (cpu *Cpu) Step() (code Code) {
	if cpu.halted {
		return
	}

	code = cpu.FetchCode()
	cpu.execute(code)

	return
}

// execute executes a single instruction as if fetched from the program
// counter. The program counter is advanced before any branch is applied.
func (cpu *Cpu) execute(code Code) {
	pc := cpu.pc
	cpu.pc = pc + 1

	op := code.Op()
	addr := code.Addr()

	var mnemonic string

	switch op {
	case OP_JMP:
		cpu.pc = addr
	case OP_JN:
		if cpu.acc.Negative() {
			cpu.pc = addr
		}
	case OP_JZ:
		if cpu.acc == 0 {
			cpu.pc = addr
		}
	case OP_LOAD:
		cpu.acc = cpu.memory[addr] & WORD_MASK
	case OP_STORE:
		cpu.memory[addr] = cpu.acc & WORD_MASK
	case OP_STORI:
		ptr := uint8(cpu.memory[addr] & ADDR_MASK)
		cpu.memory[ptr] = cpu.acc & WORD_MASK
		mnemonic = fmt.Sprintf("%v (%02X)->%02X", op, addr, ptr)
	case OP_AND, OP_OR, OP_ADD, OP_SUB:
		cpu.acc = cpu.doAlu(op, cpu.memory[addr])
	case OP_HALT:
		cpu.halted = true
	default:
		// Unused opcodes only advance the program counter.
	}

	if len(mnemonic) == 0 {
		mnemonic = code.String()
	}

	tr := Trace{
		Pc:       pc,
		Code:     code,
		NextPc:   cpu.pc,
		Acc:      cpu.acc,
		Mnemonic: mnemonic,
	}

	cpu.cycles += 1
	cpu.trace = append(cpu.trace, tr)

	if cpu.Verbose {
		log.Printf("cpu: %v", tr)
	}
}

// doAlu performs the requested ALU action, and returns the masked
// accumulator value.
func (cpu *Cpu) doAlu(op CodeOp, value Word) (output Word) {
	input := cpu.acc & WORD_MASK
	value &= WORD_MASK

	switch op {
	case OP_AND:
		output = input & value
	case OP_OR:
		output = input | value
	case OP_ADD:
		output = input + value
	case OP_SUB:
		output = input + ((^value) + 1)
	default:
		output = input
	}

	return output & WORD_MASK
}
