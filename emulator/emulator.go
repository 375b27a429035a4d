// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs an S12 processor from memory image files, and dumps
// its memory and trace when done.
package emulator

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log"
	"maps"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/ezrec/s12/cpu"
	"github.com/ezrec/s12/internal"
	s12io "github.com/ezrec/s12/io"
)

// Dump file suffixes.
const (
	MEM_SUFFIX   = ".mem"
	TRACE_SUFFIX = ".trace"
)

var _emulator_defines = map[string]int{
	"MEM_SIZE":  cpu.MEM_SIZE,
	"WORD_MASK": int(cpu.WORD_MASK),
	"SIGN_BIT":  int(cpu.SIGN_BIT),
}

// Emulator state. CPU plus load state and stop condition.
type Emulator struct {
	Verbose  bool       // If set, enables verbose logging.
	*cpu.Cpu            // Reference to the CPU simulation.
	Until    *Condition // If set, stops a run once true.

	loaded bool
}

// NewEmulator creates a new emulator, with no memory image loaded.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu: cpu.NewCpu(),
	}

	return
}

// Defines returns an iterator over all of the defines and registers.
func (emu *Emulator) Defines() iter.Seq2[string, int] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Registers(),
	)
}

// Loaded returns true if the last load succeeded.
func (emu *Emulator) Loaded() bool {
	return emu.loaded
}

// LoadReader loads a memory image. On failure the emulator is left not
// loaded, and will not run.
func (emu *Emulator) LoadReader(input io.Reader) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.LoadFrom(input)
	emu.loaded = err == nil
	if err != nil && !errors.Is(err, cpu.ErrFormat) {
		err = errors.Join(ErrIO, err)
	}

	return
}

// LoadFile loads a memory image file.
func (emu *Emulator) LoadFile(filename string) (err error) {
	defer func() {
		if err != nil {
			err = &ErrFile{Path: filename, Err: err}
		}
	}()

	inf, err := os.Open(filename)
	if err != nil {
		emu.Cpu.Fail()
		emu.loaded = false
		err = errors.Join(ErrIO, err)
		return
	}
	defer inf.Close()

	err = emu.LoadReader(inf)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %v", filename)
	}

	return
}

// Tick performs a single step of the emulator. done is set once the CPU
// has halted, or the stop condition is true.
func (emu *Emulator) Tick() (done bool, err error) {
	if !emu.loaded {
		err = ErrNotLoaded
		return
	}

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted() {
		done = true
		return
	}

	emu.Cpu.Step()

	if emu.Until != nil {
		done, err = emu.Until.Eval(emu)
		if err != nil {
			return
		}
		if done && emu.Verbose {
			log.Printf("emulator: until %v", emu.Until)
		}
	}

	done = done || emu.Cpu.Halted()

	return
}

// Run steps the emulator until done, or until maxCycles steps have been
// taken. A negative maxCycles does not limit the run.
func (emu *Emulator) Run(maxCycles int) (steps int, err error) {
	if !emu.loaded {
		err = ErrNotLoaded
		return
	}

	for maxCycles < 0 || steps < maxCycles {
		if emu.Cpu.Halted() {
			break
		}
		var done bool
		done, err = emu.Tick()
		steps++
		if err != nil || done {
			return
		}
	}

	return
}

// Report returns the processor status as lines of text.
func (emu *Emulator) Report() []string {
	status := emu.Cpu.Status()

	return []string{
		f("Cycles Executed: %v", strconv.Itoa(status.Cycles)),
		f("PC: %v", fmt.Sprintf("%02X", status.Pc)),
		f("ACC: %v", status.Acc.Binary()),
		f("Halted: %v", status.Halted),
	}
}

// DumpMemory writes the memory image to a file.
func (emu *Emulator) DumpMemory(out s12io.CreateFS, name string) (err error) {
	return emu.dump(out, name, emu.Cpu.WriteMemory)
}

// DumpTrace writes the execution trace to a file.
func (emu *Emulator) DumpTrace(out s12io.CreateFS, name string) (err error) {
	return emu.dump(out, name, emu.Cpu.WriteTrace)
}

// DumpFiles writes both the memory image and the trace, to files named
// base with MEM_SUFFIX and TRACE_SUFFIX.
func (emu *Emulator) DumpFiles(out s12io.CreateFS, base string) (err error) {
	return errors.Join(
		emu.DumpMemory(out, base+MEM_SUFFIX),
		emu.DumpTrace(out, base+TRACE_SUFFIX),
	)
}

// dump creates a file, creating any parent directories, and writes to it.
func (emu *Emulator) dump(out s12io.CreateFS, name string, write func(w io.Writer) error) (err error) {
	defer func() {
		if err != nil {
			err = &ErrFile{Path: name, Err: errors.Join(ErrIO, err)}
		}
	}()

	dir, file := path.Split(name)
	dir = strings.TrimSuffix(dir, "/")
	if len(dir) != 0 {
		out, err = subdir(out, dir)
		if err != nil {
			return
		}
	}

	ouf, err := out.Create(file)
	if err != nil {
		return
	}

	err = write(ouf)
	err = errors.Join(err, ouf.Close())
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: wrote %v", name)
	}

	return
}

// subdir returns a sub-filesystem, creating each missing directory.
func subdir(out s12io.CreateFS, dir string) (sub s12io.CreateFS, err error) {
	sub, err = out.Sub(dir)
	if !errors.Is(err, fs.ErrNotExist) {
		return
	}

	var prefix string
	for _, elem := range strings.Split(dir, "/") {
		prefix = path.Join(prefix, elem)
		err = out.Mkdir(prefix, 0755)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return
		}
	}

	return out.Sub(dir)
}
