package evla

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

// Decode converts raw script bytes to text and reports the encoding that
// was used. Valid UTF-8 passes through unchanged; anything else is
// detected with the x/net charset sniffer, falling back to Windows-1252,
// which is what older scripts with stray Latin-1 bytes were written in.
func Decode(raw []byte) (string, string, error) {
	if !hasUTF16BOM(raw) && utf8.Valid(raw) {
		return strings.TrimPrefix(string(raw), "\ufeff"), "utf-8", nil
	}

	enc, name, _ := charset.DetermineEncoding(raw, "text/plain")
	if name == "utf-8" {
		// The sniffer only looks at the first KiB; the file as a whole is not UTF-8.
		enc, name = charmap.Windows1252, "windows-1252"
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", name, fmt.Errorf("failed to decode as %s: %w", name, err)
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), name, nil
}

// DetectEncoding returns the encoding name Decode would use for raw.
func DetectEncoding(raw []byte) string {
	_, name, err := Decode(raw)
	if err != nil {
		return "unknown"
	}
	return name
}

func hasUTF16BOM(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) || bytes.HasPrefix(raw, []byte{0xFF, 0xFE})
}
