package searchindex

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// jsParser reads the subset of JavaScript that Doxygen writes for search tables:
//
//	var searchData=
//	[
//	  ['key_0',['Label',['../page.html#anchor',1,'scope']]],
//	  ...
//	];
//
// Values are nested arrays, quoted strings and integers.
type jsParser struct {
	src  string
	pos  int
	line int
}

type syntaxError struct {
	line int
	msg  string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

func (p *jsParser) errorf(format string, args ...any) error {
	return &syntaxError{line: p.line, msg: fmt.Sprintf(format, args...)}
}

// parseTable parses the whole document and returns the top-level array
func parseTable(src string) ([]any, error) {
	p := &jsParser{src: src, line: 1}
	p.skipSpace()

	// Optional "var <name> =" prefix
	if strings.HasPrefix(p.src[p.pos:], "var") {
		p.pos += len("var")
		p.skipSpace()
		start := p.pos
		for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == start {
			return nil, p.errorf("expected variable name after var")
		}
		p.skipSpace()
		if !p.consume('=') {
			return nil, p.errorf("expected '=' after variable name")
		}
		p.skipSpace()
	}

	if p.peek() != '[' {
		return nil, p.errorf("expected '[' to open the table")
	}
	table, err := p.parseArray()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	p.consume(';')
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing content %q", truncate(p.src[p.pos:], 20))
	}
	return table, nil
}

func (p *jsParser) parseValue() (any, error) {
	switch c := p.peek(); {
	case c == '[':
		return p.parseArray()
	case c == '\'' || c == '"':
		return p.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseInt()
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *jsParser) parseArray() ([]any, error) {
	p.pos++ // '['
	values := []any{}
	for {
		p.skipSpace()
		if p.consume(']') {
			return values, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			return values, nil
		}
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated array")
		}
		return nil, p.errorf("expected ',' or ']' but found %q", p.src[p.pos])
	}
}

func (p *jsParser) parseString() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\n':
			return "", p.errorf("newline in string literal")
		case c == '\\':
			if err := p.parseEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string literal")
}

func (p *jsParser) parseEscape(b *strings.Builder) error {
	p.pos++ // '\'
	if p.pos >= len(p.src) {
		return p.errorf("unterminated escape sequence")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'x':
		return p.parseHexEscape(b, 2)
	case 'u':
		return p.parseHexEscape(b, 4)
	default:
		// \\, \', \" and any other escaped character stand for themselves
		b.WriteByte(c)
	}
	return nil
}

func (p *jsParser) parseHexEscape(b *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return p.errorf("short hex escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return p.errorf("invalid hex escape %q", p.src[p.pos:p.pos+digits])
	}
	p.pos += digits

	r := rune(n)
	if digits == 4 && utf16.IsSurrogate(r) {
		// Characters outside the BMP are written as \uD8xx\uDCxx pairs
		low, ok := p.lowSurrogate()
		if r >= 0xDC00 || !ok {
			return p.errorf("unpaired surrogate \\u%04X", n)
		}
		r = utf16.DecodeRune(r, low)
	}
	b.WriteRune(r)
	return nil
}

// lowSurrogate consumes a following \uDC00-\uDFFF escape
func (p *jsParser) lowSurrogate() (rune, bool) {
	rest := p.src[p.pos:]
	if len(rest) < 6 || rest[0] != '\\' || rest[1] != 'u' {
		return 0, false
	}
	n, err := strconv.ParseUint(rest[2:6], 16, 32)
	if err != nil || n < 0xDC00 || n > 0xDFFF {
		return 0, false
	}
	p.pos += 6
	return rune(n), true
}

func (p *jsParser) parseInt() (int, error) {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errorf("invalid number %q", p.src[start:p.pos])
	}
	return n, nil
}

// skipSpace skips whitespace and JavaScript comments
func (p *jsParser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case strings.HasPrefix(p.src[p.pos:], "//"):
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case strings.HasPrefix(p.src[p.pos:], "/*"):
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.line += strings.Count(p.src[p.pos:p.pos+2+end], "\n")
			p.pos += end + 4
		default:
			return
		}
	}
}

func (p *jsParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *jsParser) consume(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// decodeRecords converts the parsed table into entries.
// Record layout: [key, [label, [href, local, description], ...]]
func decodeRecords(table []any) ([]Entry, error) {
	entries := make([]Entry, 0, len(table))
	for i, raw := range table {
		record, ok := raw.([]any)
		if !ok || len(record) != 2 {
			return nil, malformed(i, "", "record must be a [key, [label, targets...]] pair")
		}
		key, ok := record[0].(string)
		if !ok {
			return nil, malformed(i, "", "key must be a string")
		}
		body, ok := record[1].([]any)
		if !ok || len(body) == 0 {
			return nil, malformed(i, key, "missing label")
		}
		label, ok := body[0].(string)
		if !ok {
			return nil, malformed(i, key, "label must be a string")
		}

		entry := Entry{Key: key, Label: label, Targets: make([]Target, 0, len(body)-1)}
		for j, rawTarget := range body[1:] {
			target, err := decodeTarget(rawTarget)
			if err != nil {
				return nil, malformed(i, key, fmt.Sprintf("target %d: %s", j, err))
			}
			entry.Targets = append(entry.Targets, target)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeTarget(raw any) (Target, error) {
	fields, ok := raw.([]any)
	if !ok || len(fields) == 0 || len(fields) > 3 {
		return Target{}, fmt.Errorf("must be a [href, local, description] tuple")
	}
	href, ok := fields[0].(string)
	if !ok {
		return Target{}, fmt.Errorf("href must be a string")
	}
	var t Target
	t.Page, t.Anchor = ParseHref(href)

	if len(fields) > 1 {
		flag, ok := fields[1].(int)
		if !ok {
			return Target{}, fmt.Errorf("link flag must be a number")
		}
		t.Local = flag != 0
	}
	if len(fields) > 2 {
		desc, ok := fields[2].(string)
		if !ok {
			return Target{}, fmt.Errorf("description must be a string")
		}
		t.Description = desc
	}
	return t, nil
}
