// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/s12/emulator"
	"github.com/ezrec/s12/io"
)

func main() {
	var output string
	var cycles int
	var until string
	var verbose bool

	flag.StringVar(&output, "o", "", "Output base name for .mem and .trace dumps")
	flag.IntVar(&cycles, "c", -1, "Maximum cycles to execute (negative for no limit)")
	flag.StringVar(&until, "until", "", "Stop once this expression is true")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v <memFile> [-o base] [-c cycles]\n", os.Args[0])
		flag.PrintDefaults()
	}

	// The memory file may come before or after the flags.
	var memFile string
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		memFile = args[0]
		args = args[1:]
	}
	flag.CommandLine.Parse(args)

	switch {
	case len(memFile) == 0 && flag.NArg() == 1:
		memFile = flag.Arg(0)
	case flag.NArg() != 0:
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(memFile) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(until) != 0 {
		cond, err := emulator.NewCondition(until)
		if err != nil {
			log.Fatalf("-until: %v", err)
		}
		emu.Until = cond
	}

	err := emu.LoadFile(memFile)
	if err != nil {
		log.Fatal(err)
	}

	_, err = emu.Run(cycles)
	if err != nil {
		log.Fatal(err)
	}

	for _, line := range emu.Report() {
		fmt.Println(line)
	}

	if len(output) != 0 {
		var out io.CreateFS = io.DirFS(".")
		base := filepath.ToSlash(output)
		if filepath.IsAbs(output) {
			out = io.DirFS(filepath.Dir(output))
			base = filepath.Base(output)
		}

		memErr := emu.DumpMemory(out, base+emulator.MEM_SUFFIX)
		traceErr := emu.DumpTrace(out, base+emulator.TRACE_SUFFIX)
		fmt.Printf("writeMem -> %v : %v\n", output+emulator.MEM_SUFFIX, memErr == nil)
		fmt.Printf("writeTrace -> %v : %v\n", output+emulator.TRACE_SUFFIX, traceErr == nil)
		if memErr != nil || traceErr != nil {
			log.Fatal(errors.Join(memErr, traceErr))
		}
	}
}
