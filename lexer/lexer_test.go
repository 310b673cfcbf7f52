package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xvr-lang/xvr/token"
)

func kinds(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.TokenType
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := New("var x: int = 1 + 2 * 3;").Scan()
	assert.Equal(t, []token.TokenType{
		token.VAR, token.IDENTIFIER, token.COLON, token.INT_TYPE, token.ASSIGN,
		token.INT, token.ADD, token.INT, token.MULT, token.INT, token.SEMICOLON, token.EOF,
	}, kinds(toks))
}

func TestScanTwoCharOperators(t *testing.T) {
	toks := New("a == b != c <= d >= e && f || g ++ -- += -= *= /= %= ...").Scan()
	want := []token.TokenType{
		token.IDENTIFIER, token.EQUAL_EQUAL, token.IDENTIFIER, token.NOT_EQUAL,
		token.IDENTIFIER, token.LESS_EQUAL, token.IDENTIFIER, token.LARGER_EQUAL,
		token.IDENTIFIER, token.AND_AND, token.IDENTIFIER, token.OR_OR, token.IDENTIFIER,
		token.INCREMENT, token.DECREMENT, token.PLUS_ASSIGN, token.MINUS_ASSIGN,
		token.MULT_ASSIGN, token.DIV_ASSIGN, token.MOD_ASSIGN, token.ELLIPSE, token.EOF,
	}
	assert.Equal(t, want, kinds(toks))
}

func TestAmpersandAloneIsLexicalError(t *testing.T) {
	toks := New("a & b").Scan()
	assert.Equal(t, token.ERROR, toks[1].TokenType)
}

func TestShebangOnlyRecognizedAsFirstTwoChars(t *testing.T) {
	toks := New("#!/usr/bin/env xvr\nvar x = 1;").Scan()
	assert.Equal(t, token.VAR, toks[0].TokenType)
}

func TestLineComments(t *testing.T) {
	toks := New("var x = 1; // trailing comment\nvar y = 2;").Scan()
	assert.Equal(t, token.VAR, toks[0].TokenType)
	assert.Equal(t, token.VAR, toks[5].TokenType)
}

func TestBlockComments(t *testing.T) {
	toks := New("var /* inline */ x = 1;").Scan()
	assert.Equal(t, []token.TokenType{
		token.VAR, token.IDENTIFIER, token.ASSIGN, token.INT, token.SEMICOLON, token.EOF,
	}, kinds(toks))
}

func TestNumberWithUnderscoreSeparators(t *testing.T) {
	toks := New("1_000_000").Scan()
	assert.Equal(t, int32(1000000), toks[0].Literal)
}

func TestFloatPromotion(t *testing.T) {
	toks := New("3.14").Scan()
	assert.Equal(t, token.FLOAT, toks[0].TokenType)
	assert.Equal(t, float32(3.14), toks[0].Literal)
}

func TestIntegerStaysIntWithoutDot(t *testing.T) {
	toks := New("42").Scan()
	assert.Equal(t, token.INT, toks[0].TokenType)
	assert.Equal(t, int32(42), toks[0].Literal)
}

func TestStringEscapes(t *testing.T) {
	toks := New(`"a\nb\t\"c\"\\d"`).Scan()
	assert.Equal(t, "a\nb\t\"c\"\\d", toks[0].Literal)
}

func TestUnterminatedStringYieldsErrorToken(t *testing.T) {
	toks := New(`"unterminated`).Scan()
	assert.Equal(t, token.ERROR, toks[0].TokenType)
}

func TestUnterminatedStringAcrossNewlineYieldsErrorToken(t *testing.T) {
	toks := New("\"oops\nmore\"").Scan()
	assert.Equal(t, token.ERROR, toks[0].TokenType)
}

func TestKeywordsAreRecognized(t *testing.T) {
	toks := New("if else while for fn return true false null").Scan()
	want := []token.TokenType{
		token.IF, token.ELSE, token.WHILE, token.FOR, token.FUNC,
		token.RETURN, token.TRUE, token.FALSE, token.NULL, token.EOF,
	}
	assert.Equal(t, want, kinds(toks))
}

func TestIdentifierAllowsDigitsAndUnderscoreAfterFirstChar(t *testing.T) {
	toks := New("_foo1 bar_2").Scan()
	assert.Equal(t, "_foo1", toks[0].Lexeme)
	assert.Equal(t, "bar_2", toks[1].Lexeme)
}

func TestLexerContinuesAfterError(t *testing.T) {
	toks := New("& var x = 1;").Scan()
	assert.Equal(t, token.ERROR, toks[0].TokenType)
	assert.Equal(t, token.VAR, toks[1].TokenType)
}

func TestEOFRepeatsAfterExhaustion(t *testing.T) {
	l := New("")
	first := l.Next()
	second := l.Next()
	assert.Equal(t, token.EOF, first.TokenType)
	assert.Equal(t, token.EOF, second.TokenType)
}

func TestLineNumberTracking(t *testing.T) {
	toks := New("var x = 1;\nvar y = 2;").Scan()
	assert.EqualValues(t, 1, toks[0].Line)
	var secondVarLine int32
	for _, tk := range toks {
		if tk.TokenType == token.VAR && tk.Line == 2 {
			secondVarLine = tk.Line
		}
	}
	assert.EqualValues(t, 2, secondVarLine)
}
