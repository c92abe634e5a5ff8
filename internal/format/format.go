package format

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
)

// Format names a mapping file shape.
type Format string

const (
	Table     Format = "table"
	TinyV2    Format = "tiny-v2"
	TinyV1    Format = "tiny-v1"
	TSRGV2    Format = "tsrg-v2"
	TSRG      Format = "tsrg"
	SRG       Format = "srg"
	RGS       Format = "rgs"
	Proguard  Format = "proguard"
	Parchment Format = "parchment"
	MCPCSV    Format = "mcp-csv"
)

// Formats lists every known format in detection priority order.
func Formats() []Format {
	return []Format{Table, TinyV2, TinyV1, TSRGV2, TSRG, SRG, RGS, Proguard, Parchment, MCPCSV}
}

// Known reports whether f is a known format name.
func Known(f Format) bool {
	for _, k := range Formats() {
		if k == f {
			return true
		}
	}

	return false
}

// File is one mapping file.
type File struct {
	Name string
	Data []byte
}

// Base returns the file name without directories.
func (f File) Base() string {
	return path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
}

// Reader parses one format.
type Reader interface {
	Format() Format
	// CanRead sniffs the file without parsing it fully.
	CanRead(f File) bool
	// Read parses the file into a fragment.
	Read(f File) (*table.Table, error)
}

// BaseReader is a reader whose rows are keyed on the names of namespace ns
// of an existing table. Read is not supported on its own.
type BaseReader interface {
	Reader
	ReadWith(f File, base table.View, ns naming.Namespace) (*table.Table, error)
}

// ErrNeedsBase is returned by Read of a BaseReader.
var ErrNeedsBase = errors.New("format needs a base table")

// ErrUnknownFormat is returned by Detect when no reader accepts a file.
var ErrUnknownFormat = errors.New("unknown mapping format")

// ParseError reports malformed input.
type ParseError struct {
	Format Format
	File   string
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	reason := e.Reason
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	}

	if e.Line > 0 {
		return fmt.Sprintf("%s: parse %s at line %d: %s", e.File, e.Format, e.Line, reason)
	}

	return fmt.Sprintf("%s: parse %s: %s", e.File, e.Format, reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Default returns every reader in detection priority order.
func Default() []Reader {
	return []Reader{
		TableReader{},
		TinyV2Reader{},
		TinyV1Reader{},
		TSRGV2Reader{},
		TSRGReader{},
		SRGReader{},
		RGSReader{},
		ProguardReader{},
		ParchmentReader{},
		MCPReader{},
	}
}

// Lookup returns the reader for a format.
func Lookup(readers []Reader, f Format) (Reader, bool) {
	for _, r := range readers {
		if r.Format() == f {
			return r, true
		}
	}

	return nil, false
}

// Detect returns the first reader that accepts and parses f. Base readers
// match on the sniff alone and return a nil table.
func Detect(f File, readers []Reader) (Reader, *table.Table, error) {
	var firstErr error

	for _, r := range readers {
		if !r.CanRead(f) {
			continue
		}

		if _, ok := r.(BaseReader); ok {
			return r, nil, nil
		}

		t, err := r.Read(f)
		if err == nil {
			return r, t, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return nil, nil, firstErr
	}

	return nil, nil, fmt.Errorf("%s: %w", f.Name, ErrUnknownFormat)
}

var (
	errDanglingEscape = errors.New("dangling escape")
	errBadEscape      = errors.New("unknown escape sequence")
)
