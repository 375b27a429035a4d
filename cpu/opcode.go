// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
)

// Word widths and masks.
const (
	WORD_BITS = 12
	WORD_MASK = Word(1<<WORD_BITS - 1)
	SIGN_BIT  = Word(1 << (WORD_BITS - 1))
	ADDR_BITS = 8
	ADDR_MASK = 1<<ADDR_BITS - 1
	MEM_SIZE  = 1 << ADDR_BITS
)

// Word is a 12-bit machine word. Instructions and data share this width.
type Word uint16

// MakeWord masks an arbitrary integer to a 12-bit word.
func MakeWord(value int) Word {
	return Word(value) & WORD_MASK
}

// Negative returns true if bit 11 is set.
func (w Word) Negative() bool {
	return (w & SIGN_BIT) != 0
}

// Signed returns the two's-complement interpretation of the word.
func (w Word) Signed() int {
	w &= WORD_MASK
	if w.Negative() {
		return int(w) - (1 << WORD_BITS)
	}
	return int(w)
}

// Binary returns the word as a 12 character binary string.
func (w Word) Binary() string {
	return fmt.Sprintf("%012b", uint16(w&WORD_MASK))
}

// CodeOp is the 4-bit opcode field of an instruction.
type CodeOp int

const (
	OP_JMP   = CodeOp(0x0) // JMP
	OP_JN    = CodeOp(0x1) // JN
	OP_JZ    = CodeOp(0x2) // JZ
	OP_LOAD  = CodeOp(0x4) // LOAD
	OP_STORE = CodeOp(0x5) // STORE
	OP_STORI = CodeOp(0x6) // STORI
	OP_AND   = CodeOp(0x8) // AND
	OP_OR    = CodeOp(0x9) // OR
	OP_ADD   = CodeOp(0xa) // ADD
	OP_SUB   = CodeOp(0xb) // SUB
	OP_HALT  = CodeOp(0xf) // HALT
)

var _codeOpName = [16]string{
	OP_JMP:   "JMP",
	OP_JN:    "JN",
	OP_JZ:    "JZ",
	OP_LOAD:  "LOAD",
	OP_STORE: "STORE",
	OP_STORI: "STORI",
	OP_AND:   "AND",
	OP_OR:    "OR",
	OP_ADD:   "ADD",
	OP_SUB:   "SUB",
	OP_HALT:  "HALT",
}

// Valid returns false for the unused opcodes, which execute as no-ops.
func (op CodeOp) Valid() bool {
	return op >= 0 && op < 16 && len(_codeOpName[op]) != 0
}

func (op CodeOp) String() string {
	if !op.Valid() {
		return fmt.Sprintf("NOP(?) opcode=%X", int(op)&0xf)
	}
	return _codeOpName[op]
}

// Code is a single instruction word.
//
//	11    8 7             0
//	[ op   | addr          ]
type Code Word

// MakeCode creates an instruction from an opcode and an address operand.
func MakeCode(op CodeOp, addr uint8) Code {
	return Code((Word(op&0xf) << ADDR_BITS) | Word(addr))
}

// Op returns the opcode field.
func (code Code) Op() CodeOp {
	return CodeOp((Word(code) >> ADDR_BITS) & 0xf)
}

// Addr returns the address operand field.
func (code Code) Addr() uint8 {
	return uint8(Word(code) & ADDR_MASK)
}

// Binary returns the instruction as a 12 character binary string.
func (code Code) Binary() string {
	return Word(code).Binary()
}

// String returns the mnemonic of the instruction. STORI is shown without
// its resolved pointer, since that depends on memory contents.
func (code Code) String() string {
	op := code.Op()
	switch {
	case op == OP_HALT:
		return op.String()
	case op == OP_STORI:
		return fmt.Sprintf("%v (%02X)", op, code.Addr())
	case !op.Valid():
		return op.String()
	}
	return fmt.Sprintf("%v %02X", op, code.Addr())
}
