package emulator

import (
	"errors"
	"iter"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/s12/cpu"
)

// State is the processor state visible to a stop condition.
type State interface {
	Halted() bool
	Peek(addr uint8) cpu.Word
	Defines() iter.Seq2[string, int]
}

// Condition is a Starlark expression, evaluated after every step.
//
// Predeclared are the registers (pc, acc, cycles), halted, the defines
// (MEM_SIZE, WORD_MASK, SIGN_BIT) and mem(addr), which returns a memory word.
// For example:
//
//	acc & SIGN_BIT and mem(0x20) == 7
type Condition struct {
	Expr string
}

// NewCondition creates a condition, and checks that it evaluates
// against a reset processor.
func NewCondition(expr string) (cond *Condition, err error) {
	cond = &Condition{Expr: expr}

	emu := NewEmulator()
	_, err = cond.Eval(emu)
	if err != nil {
		cond = nil
		return
	}

	return
}

func (cond *Condition) String() string {
	return cond.Expr
}

// Eval evaluates the condition against the processor state.
func (cond *Condition) Eval(state State) (hit bool, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrCondition, err)
		}
	}()

	thread := starlark.Thread{Name: "until"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, value := range state.Defines() {
		pred[key] = starlark.MakeInt(value)
	}
	pred["halted"] = starlark.Bool(state.Halted())
	pred["mem"] = starlark.NewBuiltin("mem", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
		var addr int
		err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
		if err != nil {
			return
		}
		if addr < 0 || addr >= cpu.MEM_SIZE {
			err = ErrAddress
			return
		}
		value = starlark.MakeInt(int(state.Peek(uint8(addr))))
		return
	})

	prog := "rc = (" + cond.Expr + ")\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "until", prog, pred)
	if err != nil {
		return
	}

	rc, ok := dict["rc"]
	if !ok {
		return
	}

	hit = bool(rc.Truth())
	return
}
