package tabio

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// builtinDateFormats are the built-in number format IDs that display
// numbers as dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 30: true, 36: true, 45: true, 46: true, 47: true, 50: true, 57: true,
}

// dateStyles caches, per style index, whether the style formats numbers as
// dates. Spreadsheets store dates as serial numbers, so the style is the
// only way to tell them apart from plain numbers.
type dateStyles struct {
	f     *excelize.File
	cache map[int]bool
}

func newDateStyles(f *excelize.File) *dateStyles {
	return &dateStyles{f: f, cache: make(map[int]bool)}
}

func (d *dateStyles) isDate(sheet, cell string) bool {
	idx, err := d.f.GetCellStyle(sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := d.cache[idx]; ok {
		return v
	}

	isDate := false
	if style, err := d.f.GetStyle(idx); err == nil && style != nil {
		if builtinDateFormats[style.NumFmt] {
			isDate = true
		} else if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	d.cache[idx] = isDate
	return isDate
}

// isDateFormatCode reports whether a custom number format code contains
// date or time tokens outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	stripped := b.String()
	for _, token := range []string{"yy", "dd", "mmm", "h:mm", "mm:ss", "d/m", "m/d", "d-m", "m-d", "am/pm"} {
		if strings.Contains(stripped, token) {
			return true
		}
	}
	return false
}
