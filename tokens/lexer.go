package tokens

import (
	"strconv"
)

// kind is the type of a content stream operand.
type kind int

const (
	kindOther kind = iota // booleans, null, dictionaries
	kindNumber
	kindString
	kindName
	kindArray
)

// operand is a content stream operand. Strings hold their decoded bytes and
// names their unescaped text.
type operand struct {
	kind kind
	num  float64
	str  []byte
	arr  []operand
}

// operation is an operator with the operands that preceded it.
type operation struct {
	op   string
	args []operand
}

// lexer reads PDF content streams and PostScript-like CMap programs. It never
// fails: bytes it cannot make sense of are skipped.
type lexer struct {
	data []byte
	pos  int
}

// parseContent splits data into operations in stream order.
func parseContent(data []byte) []operation {
	l := &lexer{data: data}

	var ops []operation
	var args []operand
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return ops
		}

		c := l.data[l.pos]
		if isRegular(c) && !isNumberStart(c) {
			word := l.word()
			switch word {
			case "true", "false", "null":
				args = append(args, operand{kind: kindOther})
				continue
			case "BI":
				l.skipInlineImage()
				args = nil
				continue
			}
			ops = append(ops, operation{op: word, args: args})
			args = nil
			continue
		}

		if o, ok := l.operand(); ok {
			args = append(args, o)
		}
	}
}

// operand reads the operand at the current position. ok is false when the
// byte there starts no operand; it is then consumed.
func (l *lexer) operand() (operand, bool) {
	c := l.data[l.pos]
	switch {
	case c == '(':
		return operand{kind: kindString, str: l.literal()}, true
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		l.skipDict()
		return operand{kind: kindOther}, true
	case c == '<':
		return operand{kind: kindString, str: l.hex()}, true
	case c == '/':
		l.pos++
		return operand{kind: kindName, str: []byte(unescapeName(l.word()))}, true
	case c == '[':
		l.pos++
		return operand{kind: kindArray, arr: l.array()}, true
	case isNumberStart(c):
		n, err := strconv.ParseFloat(l.word(), 64)
		if err != nil {
			return operand{kind: kindOther}, true
		}
		return operand{kind: kindNumber, num: n}, true
	}
	l.pos++
	return operand{}, false
}

func (l *lexer) array() []operand {
	var items []operand
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return items
		}
		c := l.data[l.pos]
		if c == ']' {
			l.pos++
			return items
		}
		if isRegular(c) && !isNumberStart(c) {
			// Keywords inside arrays (true, false, null).
			l.word()
			items = append(items, operand{kind: kindOther})
			continue
		}
		if o, ok := l.operand(); ok {
			items = append(items, o)
		}
	}
}

// skipDict skips a dictionary body, nested dictionaries included. The
// opening "<<" has been consumed.
func (l *lexer) skipDict() {
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return
		}
		if l.data[l.pos] == '>' && l.peek(1) == '>' {
			l.pos += 2
			return
		}
		if isRegular(l.data[l.pos]) && !isNumberStart(l.data[l.pos]) {
			l.word()
			continue
		}
		l.operand()
	}
}

// literal reads a (string), handling nesting and escapes.
func (l *lexer) literal() []byte {
	l.pos++ // (
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out
			}
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.peek(0) == '\n' {
					l.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && isOctal(l.peek(0)); i++ {
					v = v*8 + int(l.data[l.pos]-'0')
					l.pos++
				}
				out = append(out, byte(v))
			default:
				out = append(out, e)
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// hex reads a <hex string>. An odd final digit is padded with 0.
func (l *lexer) hex() []byte {
	l.pos++ // <
	var out []byte
	var hi byte
	half := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

// word reads a run of regular characters.
func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// skipInlineImage skips an inline image up to and including its EI operator.
func (l *lexer) skipInlineImage() {
	for l.pos < len(l.data) {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return
		}
		if isRegular(l.data[l.pos]) && !isNumberStart(l.data[l.pos]) {
			if l.word() == "ID" {
				break
			}
			continue
		}
		l.operand()
	}

	// Image data is binary; EI must be delimited by whitespace.
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			l.pos > 0 && isSpace(l.data[l.pos-1]) &&
			(l.pos+2 == len(l.data) || isSpace(l.data[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.data) {
		return l.data[l.pos+offset]
	}
	return 0
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isSpace(c) && !isDelimiter(c)
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.'
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// unescapeName resolves #xx escapes in a name.
func unescapeName(s string) string {
	if len(s) < 3 {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && i+2 < len(s) {
			hi, ok1 := hexValue(s[i+1])
			lo, ok2 := hexValue(s[i+2])
			if ok1 && ok2 {
				out = append(out, hi<<4|lo)
				i += 2
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
