package xmltree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// Error kinds, matched with errors.Is.
var (
	ErrMalformed = errors.New("malformed xml")
	ErrNoSVGRoot = errors.New("missing svg root element")
)

// ParseError is a parse failure with the position of the offending token.
type ParseError struct {
	Kind    error // ErrMalformed or ErrNoSVGRoot
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s on line %d and column %d", e.Message, e.Line, e.Column)
}

func (e *ParseError) Unwrap() error { return e.Kind }

type parser struct {
	src []byte
	in  *parse.Input
	lex *xml.Lexer
}

// Parse parses SVG source into a Document. It returns a *ParseError wrapping
// ErrMalformed for input that is not well-formed XML, and one wrapping
// ErrNoSVGRoot when the root element is not named svg.
func Parse(b []byte) (*Document, error) {
	in := parse.NewInputBytes(b)
	p := &parser{src: b, in: in, lex: xml.NewLexer(in)}
	return p.run()
}

// ParseString parses SVG source given as a string.
func ParseString(s string) (*Document, error) {
	return Parse([]byte(s))
}

func (p *parser) malformed(offset int, format string, args ...interface{}) error {
	line, col, _ := parse.Position(bytes.NewReader(p.src), offset)
	return &ParseError{
		Kind:    ErrMalformed,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	}
}

func (p *parser) run() (*Document, error) {
	doc := &Document{Top: &Node{Type: DocumentNode}}
	cur := doc.Top

	var pi *strings.Builder // non-nil while inside a processing instruction
	for {
		offset := p.in.Offset()
		tt, data := p.lex.Next()
		switch tt {
		case xml.ErrorToken:
			if p.lex.Err() != io.EOF {
				return nil, p.malformed(offset, "%s", p.lex.Err().Error())
			}
			if pi != nil {
				return nil, p.malformed(offset, "unexpected EOF in processing instruction")
			}
			if cur != doc.Top {
				return nil, p.malformed(offset, "unexpected EOF: unclosed element <%s>", cur.Data)
			}
			if doc.Root == nil {
				return nil, &ParseError{Kind: ErrNoSVGRoot, Message: ErrNoSVGRoot.Error()}
			}
			return doc, nil
		case xml.DOCTYPEToken:
			cur.AppendChild(&Node{Type: DoctypeNode, Data: string(data)})
		case xml.CommentToken:
			cur.AppendChild(&Node{Type: CommentNode, Data: string(p.lex.Text())})
		case xml.TextToken:
			text := string(data)
			if i := strings.IndexByte(text, '<'); i != -1 {
				return nil, p.malformed(offset+i, "unescaped '<' in text")
			}
			if i := invalidEntity(text); i != -1 {
				return nil, p.malformed(offset+i, "unescaped '&' in text")
			}
			if cur == doc.Top {
				if strings.TrimSpace(text) != "" {
					return nil, p.malformed(offset, "text outside root element")
				}
				continue // inter-markup whitespace in the prolog/epilog
			}
			cur.AppendChild(&Node{Type: TextNode, Data: text})
		case xml.CDATAToken:
			if cur == doc.Top {
				return nil, p.malformed(offset, "CDATA outside root element")
			}
			cur.AppendChild(&Node{Type: TextNode, Data: string(p.lex.Text()), CDATA: true})
		case xml.StartTagToken:
			name := string(p.lex.Text())
			if !validName(name) {
				return nil, p.malformed(offset, "invalid element name %q", name)
			}
			el := &Node{Type: ElementNode, Data: name}
			if cur == doc.Top {
				if doc.Root != nil {
					return nil, p.malformed(offset, "multiple root elements")
				}
				if name != "svg" {
					return nil, &ParseError{Kind: ErrNoSVGRoot, Message: fmt.Sprintf("root element is <%s>, not <svg>", name)}
				}
				doc.Root = el
			}
			cur.AppendChild(el)
			cur = el
		case xml.StartTagPIToken:
			pi = &strings.Builder{}
			pi.Write(data)
		case xml.AttributeToken:
			name := string(p.lex.Text())
			val := p.lex.AttrVal()
			if pi != nil {
				pi.WriteByte(' ')
				pi.WriteString(name)
				pi.WriteByte('=')
				pi.Write(val)
				continue
			}
			if !validName(name) {
				return nil, p.malformed(offset, "invalid attribute name %q", name)
			}
			if len(val) < 2 || val[0] != '"' && val[0] != '\'' || val[len(val)-1] != val[0] {
				return nil, p.malformed(offset, "attribute %s value must be quoted", name)
			}
			raw := string(val[1 : len(val)-1])
			if i := strings.IndexByte(raw, '<'); i != -1 {
				return nil, p.malformed(offset+i, "unescaped '<' in attribute %s", name)
			}
			if i := invalidEntity(raw); i != -1 {
				return nil, p.malformed(offset+i, "unescaped '&' in attribute %s", name)
			}
			if cur.HasAttr(name) {
				return nil, p.malformed(offset, "duplicate attribute %s on <%s>", name, cur.Data)
			}
			cur.Attrs = append(cur.Attrs, Attr{name, raw})
		case xml.StartTagCloseToken:
			// element stays open
		case xml.StartTagCloseVoidToken:
			cur = cur.Parent
		case xml.StartTagClosePIToken:
			if pi != nil {
				pi.WriteString("?>")
				cur.AppendChild(&Node{Type: ProcInstNode, Data: pi.String()})
				pi = nil
			}
		case xml.EndTagToken:
			name := string(p.lex.Text())
			if cur == doc.Top {
				return nil, p.malformed(offset, "unexpected closing tag </%s>", name)
			}
			if cur.Data != name {
				return nil, p.malformed(offset, "unexpected closing tag </%s>, expected </%s>", name, cur.Data)
			}
			cur = cur.Parent
		}
	}
}

// validName checks the first character of an XML name; the lexer already
// restricts the rest.
func validName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_' || c == ':' || 0x80 <= c
}

// invalidEntity returns the index of the first '&' that does not start a
// predefined or numeric character reference, or -1.
func invalidEntity(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi == -1 {
			return i
		}
		if !validEntityName(s[i+1 : i+semi]) {
			return i
		}
		i += semi
	}
	return -1
}

func validEntityName(name string) bool {
	switch name {
	case "amp", "lt", "gt", "quot", "apos":
		return true
	}
	if len(name) < 2 || name[0] != '#' {
		return false
	}
	digits := name[1:]
	hex := false
	if digits[0] == 'x' || digits[0] == 'X' {
		hex = true
		digits = digits[1:]
	}
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		switch {
		case '0' <= c && c <= '9':
		case hex && ('a' <= c && c <= 'f' || 'A' <= c && c <= 'F'):
		default:
			return false
		}
	}
	return true
}
