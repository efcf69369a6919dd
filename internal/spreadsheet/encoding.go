package spreadsheet

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var byteOrderMarks = [][]byte{
	{0xEF, 0xBB, 0xBF},
	{0xFF, 0xFE},
	{0xFE, 0xFF},
}

// decodeText converts exported text to UTF-8. A byte order mark selects UTF-8
// or UTF-16 and is stripped; unmarked input that is not valid UTF-8 is read as
// Latin-1.
func decodeText(data []byte) ([]byte, error) {
	if hasByteOrderMark(data) {
		decoded, _, decodeError := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
		return decoded, decodeError
	}
	if utf8.Valid(data) {
		return data, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}

func hasByteOrderMark(data []byte) bool {
	for _, byteOrderMark := range byteOrderMarks {
		if bytes.HasPrefix(data, byteOrderMark) {
			return true
		}
	}
	return false
}
