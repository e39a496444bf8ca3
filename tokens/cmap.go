package tokens

import (
	"golang.org/x/text/encoding/unicode"
)

// codespace is a codespacerange entry. Codes matching lo..hi byte by byte
// are len(lo) bytes long.
type codespace struct {
	lo, hi []byte
}

func (cs codespace) contains(b []byte) bool {
	if len(b) < len(cs.lo) {
		return false
	}
	for i := range cs.lo {
		if b[i] < cs.lo[i] || b[i] > cs.hi[i] {
			return false
		}
	}
	return true
}

// bfrange maps lo..hi to consecutive destinations. Either dst (incremented
// per code) or dsts (one per code) is set.
type bfrange struct {
	lo, hi uint32
	dst    []uint16
	dsts   []string
}

// cmap is a ToUnicode character map.
type cmap struct {
	spaces []codespace
	chars  map[uint32]string
	ranges []bfrange
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// parseCMap reads the codespace, bfchar and bfrange sections of a ToUnicode
// program. Malformed entries are ignored.
func parseCMap(data []byte) *cmap {
	cm := &cmap{chars: make(map[uint32]string)}

	for _, op := range parseContent(data) {
		switch op.op {
		case "endcodespacerange":
			for i := 0; i+1 < len(op.args); i += 2 {
				lo, hi := op.args[i], op.args[i+1]
				if lo.kind != kindString || hi.kind != kindString || len(lo.str) == 0 || len(lo.str) != len(hi.str) {
					continue
				}
				cm.spaces = append(cm.spaces, codespace{lo: lo.str, hi: hi.str})
			}
		case "endbfchar":
			for i := 0; i+1 < len(op.args); i += 2 {
				src, dst := op.args[i], op.args[i+1]
				if src.kind != kindString {
					continue
				}
				if s, ok := destination(dst); ok {
					cm.chars[code(src.str)] = s
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(op.args); i += 3 {
				lo, hi, dst := op.args[i], op.args[i+1], op.args[i+2]
				if lo.kind != kindString || hi.kind != kindString {
					continue
				}
				r := bfrange{lo: code(lo.str), hi: code(hi.str)}
				if r.hi < r.lo {
					continue
				}
				switch dst.kind {
				case kindString:
					r.dst = units(dst.str)
					if len(r.dst) == 0 {
						continue
					}
				case kindArray:
					for _, d := range dst.arr {
						s, _ := destination(d)
						r.dsts = append(r.dsts, s)
					}
				default:
					continue
				}
				cm.ranges = append(cm.ranges, r)
			}
		}
	}

	return cm
}

// next splits the first code off b. Without a matching codespace the code is
// fallback bytes wide.
func (cm *cmap) next(b []byte, fallback int) (uint32, int) {
	for n := 1; n <= 4 && n <= len(b); n++ {
		for _, cs := range cm.spaces {
			if len(cs.lo) == n && cs.contains(b) {
				return code(b[:n]), n
			}
		}
	}
	n := min(fallback, len(b))
	return code(b[:n]), n
}

// lookup returns the Unicode text of a code.
func (cm *cmap) lookup(c uint32) (string, bool) {
	if s, ok := cm.chars[c]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if c < r.lo || c > r.hi {
			continue
		}
		off := c - r.lo
		if r.dsts != nil {
			if int(off) < len(r.dsts) {
				return r.dsts[off], true
			}
			return "", false
		}
		u := append([]uint16(nil), r.dst...)
		u[len(u)-1] += uint16(off)
		return decodeUnits(u), true
	}
	return "", false
}

// destination decodes a UTF-16BE bfchar/bfrange destination.
func destination(o operand) (string, bool) {
	switch o.kind {
	case kindString:
		s, err := utf16be.NewDecoder().Bytes(o.str)
		if err != nil {
			return "", false
		}
		return string(s), true
	case kindName:
		r, ok := glyphRune(string(o.str))
		return string(r), ok
	}
	return "", false
}

func code(b []byte) uint32 {
	var c uint32
	for _, x := range b {
		c = c<<8 | uint32(x)
	}
	return c
}

func units(b []byte) []uint16 {
	u := make([]uint16, 0, (len(b)+1)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
	}
	if len(b)%2 == 1 {
		u = append(u, uint16(b[len(b)-1]))
	}
	return u
}

func decodeUnits(u []uint16) string {
	b := make([]byte, 0, 2*len(u))
	for _, x := range u {
		b = append(b, byte(x>>8), byte(x))
	}
	s, err := utf16be.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(s)
}
