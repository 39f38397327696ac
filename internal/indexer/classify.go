package indexer

import (
	"strings"
	"unicode/utf8"
)

// textExtensions are treated as FileText without sniffing.
var textExtensions = map[string]bool{
	"txt": true, "log": true, "md": true, "rst": true, "": true,
	"rs": true, "py": true, "js": true, "ts": true, "java": true,
	"c": true, "cpp": true, "h": true, "hpp": true, "go": true,
	"json": true, "yaml": true, "yml": true, "toml": true,
	"ini": true, "cfg": true,
}

var csvExtensions = map[string]bool{"csv": true}
var tsvExtensions = map[string]bool{"tsv": true, "tab": true}
var excelExtensions = map[string]bool{"xlsx": true, "xlsm": true, "xls": true}

// extension returns the lowercased extension of path, without the dot.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// sniffWindow is the number of leading bytes sampled to distinguish text
// from binary when the extension alone doesn't resolve it.
const sniffWindow = 8192

// printableRatioThreshold is the fraction of printable/whitespace runes a
// sample must clear to be classified as text.
const printableRatioThreshold = 0.85

// sniffText classifies a byte sample as text or binary by UTF-8 validity
// and printable-rune ratio.
func sniffText(sample []byte) bool {
	if len(sample) == 0 {
		return true
	}
	if !utf8.Valid(sample) {
		return false
	}

	var printable, total int
	for i := 0; i < len(sample); {
		r, size := utf8.DecodeRune(sample[i:])
		i += size
		total++
		if r == 0 {
			return false // NUL byte is the classic binary tell
		}
		if r == '\n' || r == '\r' || r == '\t' || (r >= 0x20 && r != utf8.RuneError) {
			printable++
		}
	}
	if total == 0 {
		return true
	}
	return float64(printable)/float64(total) >= printableRatioThreshold
}
