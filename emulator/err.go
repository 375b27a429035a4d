package emulator

import (
	"errors"

	"github.com/ezrec/s12/translate"
)

var f = translate.From

var (
	ErrIO        = errors.New(f("i/o"))
	ErrNotLoaded = errors.New(f("memory image not loaded"))
	ErrCondition = errors.New(f("stop condition"))
	ErrAddress   = errors.New(f("address out of range"))
)

// ErrFile indicates the file a load or dump error occurred on.
type ErrFile struct {
	Path string
	Err  error
}

func (err *ErrFile) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrFile) Unwrap() error {
	return err.Err
}
