package ingest

import "strings"

// SplitFields splits a single delimited row into trimmed fields.
//
// A double quote toggles the quoted state and is not part of the field; a comma is a
// field boundary only outside quotes. There is no escaped-quote handling. A trailing
// empty field is dropped, so "a,b," yields two fields.
func SplitFields(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		fields = append(fields, strings.TrimSpace(current.String()))
	}
	return fields
}

// splitRows splits a payload on LF or CRLF boundaries.
func splitRows(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
