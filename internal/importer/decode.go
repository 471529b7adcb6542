package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decode converts raw export bytes to UTF-8. A byte order mark is honoured
// and removed; non-UTF-8 input is treated as Windows-1252, which most bank
// portals emit.
func decode(data []byte) ([]byte, error) {
	bomless := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(transform.Nop))
	r, err := charset.NewReader(bomless, "text/csv")
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return out, nil
}

// readTable returns the header row in file order and the data rows keyed by
// header. Rows may be ragged: missing trailing fields read as empty and
// fields beyond the header are dropped. Rows the reader cannot parse are
// counted in malformed and left out.
func readTable(data []byte) (header []string, rows []map[string]string, malformed int, err error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err = r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, 0, nil
		}
		return nil, nil, 0, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				malformed++
				continue
			}
			return nil, nil, 0, err
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, malformed, nil
}
