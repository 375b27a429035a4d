package cpu

import (
	"errors"
	"strconv"

	"github.com/ezrec/s12/translate"
)

var f = translate.From

var (
	// ErrFormat is the kind of every memory image syntax error.
	ErrFormat = errors.New(f("memory image format"))

	// Memory image errors
	ErrHeaderMissing = errors.New(f("header missing"))
	ErrFieldCount    = errors.New(f("expected two fields"))
	ErrBinaryWidth   = errors.New(f("binary width"))
	ErrBinaryDigit   = errors.New(f("binary digit"))
	ErrHexDigit      = errors.New(f("hex digit"))
	ErrAddressRange  = errors.New(f("address out of range"))
)

// ErrSyntax is a memory image error at a specific line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %v '%v' %v", strconv.Itoa(err.LineNo), err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

func (err ErrSyntax) Is(target error) bool {
	return target == ErrFormat
}

// ErrParseBinary is a token that is not a binary number of the required width.
type ErrParseBinary struct {
	Text  string
	Width int
}

func (err ErrParseBinary) Error() string {
	return f("'%v' is not a %d-bit binary number", err.Text, err.Width)
}

func (err ErrParseBinary) Unwrap() error {
	if len(err.Text) != err.Width {
		return ErrBinaryWidth
	}
	return ErrBinaryDigit
}

// ErrParseAddress is a token that is not a hex byte.
type ErrParseAddress string

func (err ErrParseAddress) Error() string {
	return f("'%v' is not a hex address", string(err))
}

func (err ErrParseAddress) Unwrap() error {
	return ErrHexDigit
}
