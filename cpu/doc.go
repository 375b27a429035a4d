// Package cpu implements the S12 processor: a 12-bit word, 8-bit address
// accumulator machine with 256 words of memory.
//
// Each instruction is a single word, with the opcode in the top 4 bits and
// a memory address in the low 8 bits. Arithmetic wraps modulo 4096, and the
// accumulator is treated as two's-complement when testing its sign.
//
// The package also reads and writes the text memory image format, and
// records an execution trace of every instruction executed.
package cpu
