// Package lexer turns DataCode source text into a stream of tokens.
//
// The cursor-based scanning technique (track start/current byte offsets into
// the original input, slice lexemes out of it rather than building strings
// incrementally) follows vippsas/sqlcode's Scanner; unlike that scanner,
// lexer and parser are split into separate packages here, following
// ha1tch/tsqlparser's layout, since the token stream is itself part of
// DataCode's public contract rather than an internal parser-only cursor.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/smasher164/xid"

	"github.com/datacode-lang/datacode/token"
)

// Error is a lexical error: malformed literal, embedded newline in a
// string, or a byte sequence that isn't valid UTF-8.
type Error struct {
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("SyntaxError: %s (line %d)", e.Message, e.Pos.Line)
}

type Lexer struct {
	file  string
	input string

	pos     int // byte offset of the rune about to be read
	readPos int // byte offset after that rune
	ch      rune
	line    int
}

func New(file, input string) *Lexer {
	l := &Lexer{file: file, input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += w
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) here() token.Pos {
	return token.Pos{File: l.file, Line: l.line}
}

// Tokenize scans the whole input and returns the token stream as a
// sequence of (kind, lexeme, line) triples. Newline is significant to the
// parser (simple statements terminate on it) but is suppressed inside
// ( ) [ ] { } by the caller, not here: the lexer has no bracket-nesting
// state, matching vippsas/sqlcode's scanner, which also never
// special-cases bracket depth.
func Tokenize(file, input string) ([]token.Token, error) {
	l := New(file, input)
	var out []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

// Next scans and returns the next token, skipping whitespace (other than
// newline, which is significant) and comments.
func (l *Lexer) Next() (token.Token, error) {
	l.skipSpaceAndComments()

	pos := l.here()

	if l.atEOF() {
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}

	ch := l.ch
	switch {
	case ch == '\n':
		l.readChar()
		l.line++
		return token.Token{Kind: token.NEWLINE, Literal: "\n", Pos: pos}, nil
	case ch == '\'':
		return l.scanString(pos)
	case unicode.IsDigit(ch):
		return l.scanNumber(pos)
	case ch == '_' || xid.Start(ch):
		return l.scanIdent(pos)
	}

	single := func(k token.Kind) (token.Token, error) {
		lit := string(ch)
		l.readChar()
		return token.Token{Kind: k, Literal: lit, Pos: pos}, nil
	}

	switch ch {
	case '+':
		return single(token.PLUS)
	case '-':
		return single(token.MINUS)
	case '*':
		return single(token.STAR)
	case '/':
		return single(token.SLASH)
	case '(':
		return single(token.LPAREN)
	case ')':
		return single(token.RPAREN)
	case '[':
		return single(token.LBRACKET)
	case ']':
		return single(token.RBRACKET)
	case '{':
		return single(token.LBRACE)
	case '}':
		return single(token.RBRACE)
	case ',':
		return single(token.COMMA)
	case ':':
		return single(token.COLON)
	case '.':
		return single(token.DOT)
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.EQ, Literal: "==", Pos: pos}, nil
		}
		return single(token.ASSIGN)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.NEQ, Literal: "!=", Pos: pos}, nil
		}
		return token.Token{}, &Error{pos, fmt.Sprintf("unexpected character %q", ch)}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.LE, Literal: "<=", Pos: pos}, nil
		}
		return single(token.LT)
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.GE, Literal: ">=", Pos: pos}, nil
		}
		return single(token.GT)
	}

	return token.Token{}, &Error{pos, fmt.Sprintf("unexpected character %q", ch)}
}

func (l *Lexer) skipSpaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '#':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanIdent(pos token.Pos) (token.Token, error) {
	start := l.pos
	for !l.atEOF() && (l.ch == '_' || xid.Continue(l.ch)) {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	kind := token.Lookup(lit)
	return token.Token{Kind: kind, Literal: lit, Pos: pos}, nil
}

func (l *Lexer) scanNumber(pos token.Pos) (token.Token, error) {
	start := l.pos
	isReal := false
	for !l.atEOF() && unicode.IsDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		isReal = true
		l.readChar()
		for !l.atEOF() && unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	lit := l.input[start:l.pos]
	kind := token.INT
	if isReal {
		kind = token.REAL
	}
	return token.Token{Kind: kind, Literal: lit, Pos: pos}, nil
}

// scanString scans a single-quoted string literal, processing the
// supported escapes (\\ \' \n \t); an embedded literal newline is a
// syntax error naming the offending line.
func (l *Lexer) scanString(pos token.Pos) (token.Token, error) {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for {
		if l.atEOF() {
			return token.Token{}, &Error{pos, "unterminated string literal"}
		}
		if l.ch == '\n' {
			return token.Token{}, &Error{l.here(), "newline in string literal"}
		}
		if l.ch == '\'' {
			l.readChar()
			return token.Token{Kind: token.STRING, Literal: sb.String(), Pos: pos}, nil
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case '\\':
				sb.WriteByte('\\')
			case '\'':
				sb.WriteByte('\'')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				return token.Token{}, &Error{l.here(), fmt.Sprintf("unknown escape sequence \\%c", l.ch)}
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
}
