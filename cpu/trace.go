package cpu

import (
	"bufio"
	"fmt"
	"io"
)

// Trace is the record of a single executed instruction.
type Trace struct {
	Pc       uint8  // Address the instruction was fetched from.
	Code     Code   // Instruction fetched.
	NextPc   uint8  // Program counter after execution.
	Acc      Word   // Accumulator after execution.
	Mnemonic string // Instruction as executed.
}

// String formats the trace record as a single log line:
//
//	PP IIIIIIIIIIII -> PC=NN ACC=AAAAAAAAAAAA ; MNEMONIC
func (tr Trace) String() string {
	return fmt.Sprintf("%02X %v -> PC=%02X ACC=%v ; %v",
		tr.Pc, tr.Code.Binary(), tr.NextPc, tr.Acc.Binary(), tr.Mnemonic)
}

// WriteTrace writes one line per trace record, in execution order.
func WriteTrace(w io.Writer, trace []Trace) (err error) {
	bw := bufio.NewWriter(w)

	for _, tr := range trace {
		_, err = fmt.Fprintln(bw, tr.String())
		if err != nil {
			return
		}
	}

	err = bw.Flush()
	return
}
