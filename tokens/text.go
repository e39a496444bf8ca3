package tokens

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// spaceKerning is the TJ adjustment, in thousandths of text space, past
// which a gap is read as a word space.
const spaceKerning = 250

// maxFormDepth bounds form XObject nesting.
const maxFormDepth = 8

// scope is a content stream with the resources it can reach.
type scope struct {
	content []byte
	fonts   map[string]*fontDecoder
	forms   map[string]*scope

	// resolve looks up a form XObject missing from forms. It may be nil.
	resolve func(name string) *scope
}

// form returns the form XObject painted as name, resolving it on first use.
// Names that resolve to nothing are remembered too.
func (sc *scope) form(name string) *scope {
	if f, ok := sc.forms[name]; ok {
		return f
	}
	if sc.resolve == nil {
		return nil
	}
	f := sc.resolve(name)
	if sc.forms == nil {
		sc.forms = make(map[string]*scope)
	}
	sc.forms[name] = f
	return f
}

// tokens returns the text of every text-showing operator, in stream order.
// Form XObjects are expanded where they are painted.
func (sc *scope) tokens() []string {
	var out []string
	sc.walk(&out, nil, 0)
	return out
}

func (sc *scope) walk(out *[]string, font *fontDecoder, depth int) {
	var saved []*fontDecoder

	for _, op := range parseContent(sc.content) {
		switch op.op {
		case "q":
			saved = append(saved, font)
		case "Q":
			if n := len(saved); n > 0 {
				font = saved[n-1]
				saved = saved[:n-1]
			}
		case "Tf":
			if len(op.args) > 0 && op.args[0].kind == kindName {
				font = sc.fonts[string(op.args[0].str)]
			}
		case "Tj", "'", "\"":
			if n := len(op.args); n > 0 && op.args[n-1].kind == kindString {
				emit(out, decoderOrDefault(font).decode(op.args[n-1].str))
			}
		case "TJ":
			if len(op.args) > 0 && op.args[0].kind == kindArray {
				emit(out, showArray(decoderOrDefault(font), op.args[0].arr))
			}
		case "Do":
			if len(op.args) == 0 || op.args[0].kind != kindName || depth >= maxFormDepth {
				continue
			}
			if form := sc.form(string(op.args[0].str)); form != nil {
				form.walk(out, font, depth+1)
			}
		}
	}
}

// showArray joins the strings of a TJ array, turning wide negative
// adjustments into a single space.
func showArray(font *fontDecoder, arr []operand) string {
	var sb strings.Builder
	for _, o := range arr {
		switch o.kind {
		case kindString:
			sb.WriteString(font.decode(o.str))
		case kindNumber:
			if o.num < -spaceKerning && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

func emit(out *[]string, s string) {
	if s == "" {
		return
	}
	*out = append(*out, norm.NFC.String(s))
}

func decoderOrDefault(f *fontDecoder) *fontDecoder {
	if f == nil {
		return defaultDecoder
	}
	return f
}
