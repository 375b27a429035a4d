package emulator

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/ezrec/s12/cpu"
	s12io "github.com/ezrec/s12/io"
	"github.com/ezrec/s12/translate"
)

func init() {
	translate.SetLanguage(language.AmericanEnglish)
}

// countdown decrements the word at 10 until zero, then halts.
var countdown = []string{
	"00000000 000000000000 // pc, acc",
	"00 010000010000 // LOAD 10",
	"01 101100010001 // SUB 11",
	"02 010100010000 // STORE 10",
	"03 001000000101 // JZ 05",
	"04 000000000000 // JMP 00",
	"05 111100000000 // HALT",
	"10 000000000011 // 3",
	"11 000000000001 // 1",
}

func newLoaded(t *testing.T, program []string) (emu *Emulator) {
	emu = NewEmulator()
	err := emu.LoadReader(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)
	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.False(emu.Loaded())
	assert.NotNil(emu.Cpu)

	done, err := emu.Tick()
	assert.ErrorIs(err, ErrNotLoaded)
	assert.False(done)

	_, err = emu.Run(-1)
	assert.ErrorIs(err, ErrNotLoaded)
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := newLoaded(t, countdown)
	assert.True(emu.Loaded())

	steps, err := emu.Run(-1)
	assert.NoError(err)
	assert.Equal(15, steps)
	assert.True(emu.Halted())
	assert.Equal(15, emu.Cycles())

	// Further runs do nothing.
	steps, err = emu.Run(-1)
	assert.NoError(err)
	assert.Equal(0, steps)
	assert.Equal(15, emu.Cycles())

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(15, emu.Cycles())

	assert.Equal([]string{
		"Cycles Executed: 15",
		"PC: 06",
		"ACC: 000000000000",
		"Halted: true",
	}, emu.Report())
}

func TestEmulatorReportLarge(t *testing.T) {
	assert := assert.New(t)
	defer translate.SetLanguage(language.AmericanEnglish)

	// All zero memory is JMP 00 forever.
	emu := newLoaded(t, []string{"00000000 000000000000"})

	steps, err := emu.Run(1234)
	assert.NoError(err)
	assert.Equal(1234, steps)
	assert.False(emu.Halted())

	expected := []string{
		"Cycles Executed: 1234",
		"PC: 00",
		"ACC: 000000000000",
		"Halted: false",
	}
	assert.Equal(expected, emu.Report())

	translate.SetLanguage(language.German)
	assert.Equal(expected[0], emu.Report()[0])
}

func TestEmulatorRunBudget(t *testing.T) {
	assert := assert.New(t)

	emu := newLoaded(t, countdown)

	steps, err := emu.Run(4)
	assert.NoError(err)
	assert.Equal(4, steps)
	assert.False(emu.Halted())
	assert.Equal(4, emu.Cycles())
	assert.Equal(uint8(0x04), emu.Pc())

	steps, err = emu.Run(0)
	assert.NoError(err)
	assert.Equal(0, steps)

	steps, err = emu.Run(100)
	assert.NoError(err)
	assert.Equal(11, steps)
	assert.True(emu.Halted())
}

func TestEmulatorRunUntil(t *testing.T) {
	assert := assert.New(t)

	emu := newLoaded(t, countdown)

	cond, err := NewCondition("mem(0x10) == 1")
	require.NoError(t, err)
	emu.Until = cond

	steps, err := emu.Run(-1)
	assert.NoError(err)
	assert.False(emu.Halted())
	// LOAD, SUB, STORE, JZ, JMP, LOAD, SUB, STORE
	assert.Equal(8, steps)
	assert.Equal(cpu.Word(1), emu.Peek(0x10))
}

func TestEmulatorLoadFormatError(t *testing.T) {
	assert := assert.New(t)

	emu := newLoaded(t, countdown)
	_, err := emu.Run(3)
	assert.NoError(err)

	err = emu.LoadReader(strings.NewReader("00000000 000000000000\n00 0101\n"))
	assert.ErrorIs(err, cpu.ErrFormat)
	assert.ErrorIs(err, cpu.ErrBinaryWidth)
	assert.NotErrorIs(err, ErrIO)

	assert.False(emu.Loaded())
	assert.Equal(0, emu.Cycles())
	assert.Empty(emu.Trace())

	_, err = emu.Run(10)
	assert.ErrorIs(err, ErrNotLoaded)
	assert.Equal(0, emu.Cycles())

	// A good load recovers.
	err = emu.LoadReader(strings.NewReader(strings.Join(countdown, "\n")))
	assert.NoError(err)
	assert.True(emu.Loaded())
}

func TestEmulatorLoadFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	good := filepath.Join(dir, "countdown.mem")
	require.NoError(t, os.WriteFile(good, []byte(strings.Join(countdown, "\n")), 0644))

	emu := NewEmulator()
	assert.NoError(emu.LoadFile(good))
	assert.True(emu.Loaded())

	missing := filepath.Join(dir, "missing.mem")
	err := emu.LoadFile(missing)
	assert.ErrorIs(err, ErrIO)
	assert.ErrorIs(err, fs.ErrNotExist)
	assert.False(emu.Loaded())

	// The processor is left halted, as after a format error.
	assert.True(emu.Halted())
	assert.Equal(cpu.Code(0), emu.Step())
	assert.Equal(0, emu.Cycles())
	assert.Empty(emu.Trace())

	var ef *ErrFile
	if assert.True(errors.As(err, &ef)) {
		assert.Equal(missing, ef.Path)
	}

	bad := filepath.Join(dir, "bad.mem")
	require.NoError(t, os.WriteFile(bad, []byte("// no header\n"), 0644))
	err = emu.LoadFile(bad)
	assert.ErrorIs(err, cpu.ErrFormat)
	assert.ErrorIs(err, cpu.ErrHeaderMissing)
	assert.Contains(err.Error(), bad)
	assert.False(emu.Loaded())
}

func TestEmulatorDumpFiles(t *testing.T) {
	assert := assert.New(t)

	emu := newLoaded(t, countdown)
	_, err := emu.Run(-1)
	require.NoError(t, err)

	out := s12io.NewMemFS()
	assert.NoError(emu.DumpFiles(out, "runs/first/countdown"))
	assert.Equal([]string{
		"runs/first/countdown.mem",
		"runs/first/countdown.trace",
	}, out.Files())

	mem, err := out.ReadFile("runs/first/countdown.mem")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(mem), "\n"), "\n")
	assert.Len(lines, 1+cpu.MEM_SIZE)
	assert.Equal("00000110 000000000000", lines[0])
	assert.Equal("10 000000000000", lines[1+0x10])

	trace, err := out.ReadFile("runs/first/countdown.trace")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSuffix(string(trace), "\n"), "\n")
	assert.Len(lines, 15)
	assert.Equal("00 010000010000 -> PC=01 ACC=000000000011 ; LOAD 10", lines[0])
	assert.Equal("05 111100000000 -> PC=06 ACC=000000000000 ; HALT", lines[14])

	// The dumped image reloads to an identical dump.
	other := NewEmulator()
	require.NoError(t, other.LoadReader(strings.NewReader(string(mem))))
	again := s12io.NewMemFS()
	assert.NoError(other.DumpMemory(again, "again.mem"))
	data, err := again.ReadFile("again.mem")
	assert.NoError(err)
	assert.Equal(string(mem), string(data))

	// Dumps do not alter the processor.
	assert.Equal(15, emu.Cycles())
	assert.Len(emu.Trace(), 15)
}

func TestEmulatorDumpFailure(t *testing.T) {
	assert := assert.New(t)

	emu := newLoaded(t, countdown)
	_, err := emu.Run(5)
	require.NoError(t, err)

	out := s12io.NewMemFS()
	out.ReadOnly = true

	err = emu.DumpFiles(out, "countdown")
	assert.ErrorIs(err, ErrIO)
	assert.ErrorIs(err, fs.ErrPermission)
	assert.Contains(err.Error(), "countdown.mem")
	assert.Contains(err.Error(), "countdown.trace")

	// The processor is untouched, and can continue.
	assert.Equal(5, emu.Cycles())
	_, err = emu.Run(-1)
	assert.NoError(err)
	assert.True(emu.Halted())
}

func TestEmulatorDumpDir(t *testing.T) {
	assert := assert.New(t)

	emu := newLoaded(t, countdown)
	_, err := emu.Run(-1)
	require.NoError(t, err)

	dir := t.TempDir()
	assert.NoError(emu.DumpFiles(s12io.DirFS(dir), "out/countdown"))

	data, err := os.ReadFile(filepath.Join(dir, "out", "countdown.trace"))
	assert.NoError(err)
	assert.Equal(15, strings.Count(string(data), "\n"))
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := newLoaded(t, countdown)
	_, err := emu.Run(1)
	require.NoError(t, err)

	defines := map[string]int{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal(map[string]int{
		"MEM_SIZE":  256,
		"WORD_MASK": 4095,
		"SIGN_BIT":  2048,
		"pc":        1,
		"acc":       3,
		"cycles":    1,
	}, defines)
}
