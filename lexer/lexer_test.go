package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacode-lang/datacode/token"
)

func kinds(t *testing.T, toks []token.Token) []token.Kind {
	t.Helper()
	var out []token.Kind
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestTokenizeBasicAssignment(t *testing.T) {
	toks, err := Tokenize("t.dc", "global x = 10")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.GLOBAL, token.IDENT, token.ASSIGN, token.INT, token.EOF,
	}, kinds(t, toks))
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize("t.dc", `'a\'b\nc'`)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "a'b\nc", toks[0].Literal)
}

func TestTokenizeRejectsNewlineInString(t *testing.T) {
	_, err := Tokenize("t.dc", "'abc\ndef'")
	require.Error(t, err)
}

func TestTokenizeComparisonOperators(t *testing.T) {
	toks, err := Tokenize("t.dc", "a <= b != c == d >= e")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.IDENT, token.LE, token.IDENT, token.NEQ, token.IDENT,
		token.EQ, token.IDENT, token.GE, token.IDENT, token.EOF,
	}, kinds(t, toks))
}

func TestTokenizeComment(t *testing.T) {
	toks, err := Tokenize("t.dc", "global x = 1 # trailing comment\nglobal y = 2")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.GLOBAL, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.GLOBAL, token.IDENT, token.ASSIGN, token.INT, token.EOF,
	}, kinds(t, toks))
}

func TestTokenizeRealNumber(t *testing.T) {
	toks, err := Tokenize("t.dc", "3.14")
	require.NoError(t, err)
	require.Equal(t, token.REAL, toks[0].Kind)
	assert.Equal(t, "3.14", toks[0].Literal)
}

func TestTokenizeLineNumbers(t *testing.T) {
	toks, err := Tokenize("t.dc", "a\nb\nc")
	require.NoError(t, err)
	var idents []token.Token
	for _, tok := range toks {
		if tok.Kind == token.IDENT {
			idents = append(idents, tok)
		}
	}
	require.Len(t, idents, 3)
	assert.Equal(t, 1, idents[0].Pos.Line)
	assert.Equal(t, 2, idents[1].Pos.Line)
	assert.Equal(t, 3, idents[2].Pos.Line)
}
