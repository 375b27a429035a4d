// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// Image is a memory image: initial register values, plus the contents of
// every memory word.
//
// Text format, one record per line, '//' to end of line is a comment:
//
//	PPPPPPPP AAAAAAAAAAAA   ; header: 8-bit binary pc, 12-bit binary acc
//	HH WWWWWWWWWWWW         ; hex address, 12-bit binary word
type Image struct {
	Pc     uint8
	Acc    Word
	Memory [MEM_SIZE]Word
}

var _ io.WriterTo = (*Image)(nil)

// Parser reads memory images.
type Parser struct {
	Verbose bool // If set, logs each parsed record.
}

// ParseImage parses a memory image with a default parser.
func ParseImage(input io.Reader) (img *Image, err error) {
	parser := &Parser{}
	return parser.Parse(input)
}

// Parse parses a memory image text stream. Addresses not mentioned in the
// stream are zero; when an address appears twice, the last word wins.
func (parser *Parser) Parse(input io.Reader) (img *Image, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			img = nil
			if lineno > 0 {
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			}
		}
	}()

	img = &Image{}
	header := false

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		line = stripComment(text)
		if len(line) == 0 {
			continue
		}

		words := strings.Fields(line)
		if len(words) != 2 {
			err = ErrFieldCount
			return
		}

		if !header {
			var pc uint64
			pc, err = parseBinary(words[0], ADDR_BITS)
			if err != nil {
				return
			}
			var acc uint64
			acc, err = parseBinary(words[1], WORD_BITS)
			if err != nil {
				return
			}
			img.Pc = uint8(pc)
			img.Acc = Word(acc)
			header = true
			if parser.Verbose {
				log.Printf("image: %v: pc=%02X acc=%v", lineno, img.Pc, img.Acc.Binary())
			}
			continue
		}

		var addr uint8
		addr, err = parseAddress(words[0])
		if err != nil {
			return
		}
		var word uint64
		word, err = parseBinary(words[1], WORD_BITS)
		if err != nil {
			return
		}
		img.Memory[addr] = Word(word)
		if parser.Verbose {
			log.Printf("image: %v: %02X %v", lineno, addr, img.Memory[addr].Binary())
		}
	}

	err = scanner.Err()
	if err != nil {
		// Read failures are not syntax errors.
		lineno = 0
		return
	}

	if !header {
		err = &ErrSyntax{LineNo: lineno, Err: ErrHeaderMissing}
		lineno = 0
		return
	}

	return
}

// WriteTo writes the header and all memory words, in ascending address order.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)

	var count int
	count, err = fmt.Fprintf(bw, "%08b %v\n", img.Pc, img.Acc.Binary())
	n += int64(count)
	if err != nil {
		return
	}

	for addr, word := range img.Memory {
		count, err = fmt.Fprintf(bw, "%02X %v\n", addr, word.Binary())
		n += int64(count)
		if err != nil {
			return
		}
	}

	err = bw.Flush()

	return
}

// stripComment removes a '//' comment and surrounding whitespace.
func stripComment(text string) string {
	before, _, _ := strings.Cut(text, "//")
	return strings.TrimSpace(before)
}

// parseBinary parses a binary string of exactly width digits.
func parseBinary(text string, width int) (value uint64, err error) {
	if len(text) != width {
		err = ErrParseBinary{Text: text, Width: width}
		return
	}

	value, err = strconv.ParseUint(text, 2, width)
	if err != nil {
		err = ErrParseBinary{Text: text, Width: width}
		return
	}

	return
}

// parseAddress parses a hexadecimal memory address.
func parseAddress(text string) (addr uint8, err error) {
	value, err := strconv.ParseUint(text, 16, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			err = ErrAddressRange
			return
		}
		err = ErrParseAddress(text)
		return
	}

	if value >= MEM_SIZE {
		err = ErrAddressRange
		return
	}

	addr = uint8(value)
	return
}
