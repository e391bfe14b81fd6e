package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind byte

const (
	tokEOF tokenKind = iota
	tokString
	tokNumber
	tokName
	tokVar
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

type lexer struct {
	src []rune
	pos int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	r := l.src[l.pos]
	switch {
	case r == '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case r == ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case r == ',':
		l.pos++
		return token{kind: tokComma, pos: start}, nil
	case r == '\'' || r == '"':
		end := l.pos + 1
		for end < len(l.src) && l.src[end] != r {
			end++
		}
		if end >= len(l.src) {
			return token{}, fmt.Errorf("%w: unterminated string at %d", ErrSyntax, start)
		}
		l.pos = end + 1
		return token{kind: tokString, text: string(l.src[start+1 : end]), pos: start}, nil
	case r == '$':
		l.pos++
		name := l.name()
		if name == "" {
			return token{}, fmt.Errorf("%w: empty variable at %d", ErrSyntax, start)
		}
		return token{kind: tokVar, text: name, pos: start}, nil
	case unicode.IsDigit(r) || (r == '.' && l.pos+1 < len(l.src) && unicode.IsDigit(l.src[l.pos+1])):
		end := l.pos
		for end < len(l.src) && (unicode.IsDigit(l.src[end]) || l.src[end] == '.') {
			end++
		}
		text := string(l.src[start:end])
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, fmt.Errorf("%w: bad number %q at %d", ErrSyntax, text, start)
		}
		l.pos = end
		return token{kind: tokNumber, text: text, num: n, pos: start}, nil
	case isNameStart(r):
		return token{kind: tokName, text: l.name(), pos: start}, nil
	}
	return token{}, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, start)
}

func (l *lexer) name() string {
	start := l.pos
	for l.pos < len(l.src) && isNamePart(l.src[l.pos]) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isNamePart(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r) || strings.ContainsRune("-.:", r)
}

// localName strips a namespace prefix: "xf:get-property" → "get-property".
func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
