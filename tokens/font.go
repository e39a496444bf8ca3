package tokens

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// fontDecoder turns the bytes of a shown string into text.
type fontDecoder struct {
	toUnicode *cmap
	// width is the code width in bytes used without a matching codespace:
	// 2 for composite (Type0) fonts, 1 otherwise.
	width int
	table [256]rune
}

// newSimpleDecoder returns a one-byte decoder for a base encoding name.
// Unknown and missing encodings fall back to WinAnsi, whose ASCII range
// matches StandardEncoding for the characters lab reports print.
func newSimpleDecoder(encoding string) *fontDecoder {
	cm := charmap.Windows1252
	if encoding == "MacRomanEncoding" {
		cm = charmap.Macintosh
	}

	f := &fontDecoder{width: 1}
	for i := range f.table {
		f.table[i] = cm.DecodeByte(byte(i))
	}
	return f
}

// newCompositeDecoder returns a two-byte decoder for Type0 fonts.
func newCompositeDecoder() *fontDecoder {
	f := newSimpleDecoder("")
	f.width = 2
	return f
}

// defaultDecoder is used when no font is selected or the font is unknown.
var defaultDecoder = newSimpleDecoder("WinAnsiEncoding")

// applyDifferences overrides codes from a /Differences array.
func (f *fontDecoder) applyDifferences(diffs []operand) {
	c := -1
	for _, d := range diffs {
		switch d.kind {
		case kindNumber:
			c = int(d.num)
		case kindName:
			if c < 0 || c > 255 {
				continue
			}
			if r, ok := glyphRune(string(d.str)); ok {
				f.table[c] = r
			}
			c++
		}
	}
}

// decode returns the text of a shown string.
func (f *fontDecoder) decode(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		if f.toUnicode != nil {
			c, n := f.toUnicode.next(b, f.width)
			if s, ok := f.toUnicode.lookup(c); ok {
				sb.WriteString(s)
			} else if n == 1 {
				sb.WriteRune(f.table[c])
			} else if c != 0 {
				sb.WriteRune(rune(c))
			}
			b = b[n:]
			continue
		}

		if f.width == 2 && len(b) >= 2 {
			// Identity encoding without ToUnicode: best effort.
			if c := rune(b[0])<<8 | rune(b[1]); c != 0 {
				sb.WriteRune(c)
			}
			b = b[2:]
			continue
		}

		sb.WriteRune(f.table[b[0]])
		b = b[1:]
	}
	return sb.String()
}

// glyphs maps the glyph names lab report fonts use in /Differences arrays.
var glyphs = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"quoteright": '’', "quoteleft": '‘', "parenleft": '(',
	"parenright": ')', "asterisk": '*', "plus": '+', "comma": ',',
	"hyphen": '-', "minus": '−', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "asciicircum": '^',
	"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|',
	"braceright": '}', "asciitilde": '~', "degree": '°', "mu": 'µ',
	"plusminus": '±', "multiply": '×', "periodcentered": '·',
	"ordfeminine": 'ª', "ordmasculine": 'º', "endash": '–', "emdash": '—',
	"bullet": '•', "exclamdown": '¡', "questiondown": '¿',
	"Aacute": 'Á', "Eacute": 'É', "Iacute": 'Í', "Oacute": 'Ó', "Uacute": 'Ú',
	"aacute": 'á', "eacute": 'é', "iacute": 'í', "oacute": 'ó', "uacute": 'ú',
	"Ntilde": 'Ñ', "ntilde": 'ñ', "Udieresis": 'Ü', "udieresis": 'ü',
	"nbspace": '\u00a0', "nonbreakingspace": '\u00a0',
}

// glyphRune resolves a glyph name: single letters, the glyphs table, and
// uniXXXX/uXXXX names.
func glyphRune(name string) (rune, bool) {
	if len(name) == 1 && (name[0] >= 'A' && name[0] <= 'Z' || name[0] >= 'a' && name[0] <= 'z') {
		return rune(name[0]), true
	}
	if r, ok := glyphs[name]; ok {
		return r, true
	}

	hex, ok := strings.CutPrefix(name, "uni")
	if ok && len(hex) != 4 {
		return 0, false
	}
	if !ok {
		hex, ok = strings.CutPrefix(name, "u")
		if !ok || len(hex) < 4 || len(hex) > 6 {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
