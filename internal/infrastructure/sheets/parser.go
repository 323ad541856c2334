package sheets

import (
	"strings"
	"unicode/utf8"
)

// ParseRows splits comma-separated text into rows of fields.
// See ParseDelimited.
func ParseRows(text string) [][]string {
	return ParseDelimited(text, ',')
}

// ParseDelimited splits delimited text into rows of fields.
//
// A double quote opens a quoted section in which delimiters and newlines are
// literal and "" is an escaped quote. Carriage returns outside quotes are
// dropped. An unterminated quote is closed at end of input, and a trailing
// row without a final newline is still emitted. Rows whose fields are all
// blank are discarded. Bytes that are not valid UTF-8 are copied through
// unchanged.
func ParseDelimited(text string, delim rune) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); {
		c, size := utf8.DecodeRuneInString(text[i:])
		raw := text[i : i+size]
		i += size

		if inQuotes {
			if c == '"' {
				if i < len(text) && text[i] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteString(raw)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case delim:
			endField()
		case '\n':
			endField()
			endRow()
		case '\r':
		default:
			field.WriteString(raw)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		endField()
		endRow()
	}

	kept := rows[:0]
	for _, r := range rows {
		if !blankRow(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

func blankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
