// Package expr implements the DynamoDB expression sublanguage: key
// conditions, filter/condition expressions, and update expressions.
package expr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokPlaceholder // :value
	tokNamePlaceholder // #name
	tokOp              // = <> < <= > >= , ( ) .
	tokKeyword         // AND OR NOT BETWEEN IN SET REMOVE ADD DELETE
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

var keywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "BETWEEN": true, "IN": true,
	"SET": true, "REMOVE": true, "ADD": true, "DELETE": true,
}

// lexer tokenizes a DynamoDB expression string. Identifiers may contain
// letters, digits and underscore ('-' is the minus operator); '.' and '[' ']'
// are kept as separate operator tokens so the parser can build document paths.
type lexer struct {
	src []rune
	pos int
}

func newLexer(s string) *lexer {
	return &lexer{src: []rune(s)}
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF}, nil
	}
	r := l.src[l.pos]

	switch {
	case r == ':':
		start := l.pos
		l.pos++
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokPlaceholder, text: string(l.src[start:l.pos])}, nil
	case r == '#':
		start := l.pos
		l.pos++
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokNamePlaceholder, text: string(l.src[start:l.pos])}, nil
	case r == '(' || r == ')' || r == ',' || r == '.' || r == '[' || r == ']':
		l.pos++
		return token{kind: tokOp, text: string(r)}, nil
	case r == '<':
		l.pos++
		if l.peekRune() == '=' {
			l.pos++
			return token{kind: tokOp, text: "<="}, nil
		}
		if l.peekRune() == '>' {
			l.pos++
			return token{kind: tokOp, text: "<>"}, nil
		}
		return token{kind: tokOp, text: "<"}, nil
	case r == '>':
		l.pos++
		if l.peekRune() == '=' {
			l.pos++
			return token{kind: tokOp, text: ">="}, nil
		}
		return token{kind: tokOp, text: ">"}, nil
	case r == '=':
		l.pos++
		return token{kind: tokOp, text: "="}, nil
	case r == '+' || r == '-':
		l.pos++
		return token{kind: tokOp, text: string(r)}, nil
	case isIdentStart(r):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		word := string(l.src[start:l.pos])
		if keywords[strings.ToUpper(word)] {
			return token{kind: tokKeyword, text: strings.ToUpper(word)}, nil
		}
		return token{kind: tokIdent, text: word}, nil
	case unicode.IsDigit(r):
		// A run of digits is only valid as a list index, right after '['.
		j := l.pos - 1
		for j >= 0 && unicode.IsSpace(l.src[j]) {
			j--
		}
		if j < 0 || l.src[j] != '[' {
			return token{}, fmt.Errorf("unexpected character %q", r)
		}
		start := l.pos
		for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.src[start:l.pos])}, nil
	default:
		return token{}, fmt.Errorf("unexpected character %q", r)
	}
}

// tokenize fully tokenizes s.
func tokenize(s string) ([]token, error) {
	l := newLexer(s)
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		if t.kind == tokEOF {
			break
		}
		toks = append(toks, t)
	}
	return toks, nil
}
