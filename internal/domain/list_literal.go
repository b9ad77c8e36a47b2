package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseListLiteral decodes a list-of-strings literal such as
// ['first', "it's", 'tab\tseparated'] without evaluating it as code.
// Only string elements are accepted; anything else is an error.
func ParseListLiteral(s string) ([]string, error) {
	p := &literalParser{src: strings.TrimSpace(s)}
	return p.parse()
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) parse() ([]string, error) {
	if !p.consume('[') {
		return nil, fmt.Errorf("list literal: expected '[' at %d", p.pos)
	}
	out := []string{}
	p.skipSpace()
	if p.consume(']') {
		return out, p.expectEnd()
	}
	for {
		p.skipSpace()
		item, err := p.parseString()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		p.skipSpace()
		if p.consume(',') {
			p.skipSpace()
			// trailing comma
			if p.consume(']') {
				return out, p.expectEnd()
			}
			continue
		}
		if p.consume(']') {
			return out, p.expectEnd()
		}
		return nil, fmt.Errorf("list literal: expected ',' or ']' at %d", p.pos)
	}
}

func (p *literalParser) parseString() (string, error) {
	if p.pos >= len(p.src) {
		return "", fmt.Errorf("list literal: unexpected end of input")
	}
	quote := p.src[p.pos]
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("list literal: expected quoted string at %d", p.pos)
	}
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if err := p.parseEscape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", fmt.Errorf("list literal: unterminated string")
}

func (p *literalParser) parseEscape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return fmt.Errorf("list literal: dangling escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'x':
		return p.parseHexRune(b, 2)
	case 'u':
		return p.parseHexRune(b, 4)
	case 'U':
		return p.parseHexRune(b, 8)
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) parseHexRune(b *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return fmt.Errorf("list literal: short hex escape at %d", p.pos)
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return fmt.Errorf("list literal: bad hex escape at %d: %w", p.pos, err)
	}
	p.pos += digits
	b.WriteRune(rune(v))
	return nil
}

func (p *literalParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) expectEnd() error {
	p.skipSpace()
	if p.pos != len(p.src) {
		return fmt.Errorf("list literal: trailing data at %d", p.pos)
	}
	return nil
}
