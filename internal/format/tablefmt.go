package format

import (
	"bytes"
	"errors"
	"strings"

	"mapping-resolver/internal/table"
)

// TableReader reads the table text format, e.g. a previously cached table.
type TableReader struct{}

func (TableReader) Format() Format { return Table }

func (TableReader) CanRead(f File) bool {
	first := firstLine(f.Data, "")
	return first == "mappings\t1" || strings.HasPrefix(first, "mappings\t1\t")
}

func (TableReader) Read(f File) (*table.Table, error) {
	t, err := table.Read(bytes.NewReader(f.Data))
	if err != nil {
		pe := &ParseError{Format: Table, File: f.Name, Err: err}

		var malformed *table.MalformedTableError
		if errors.As(err, &malformed) {
			pe.Line = malformed.Line
			pe.Reason = malformed.Reason
		}

		return nil, pe
	}

	return t, nil
}
