package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		lexeme    string
		want      Token
	}{
		{
			name:      "Create ASSIGN token",
			tokenType: ASSIGN,
			lexeme:    "=",
			want:      Token{TokenType: ASSIGN, Lexeme: "=", Line: 1},
		},
		{
			name:      "Create IDENTIFIER token",
			tokenType: IDENTIFIER,
			lexeme:    "myVar",
			want:      Token{TokenType: IDENTIFIER, Lexeme: "myVar", Line: 1},
		},
		{
			name:      "Create MULT token",
			tokenType: MULT,
			lexeme:    "*",
			want:      Token{TokenType: MULT, Lexeme: "*", Line: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.lexeme, 1)
			if got != tt.want {
				t.Errorf("CreateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	got := CreateLiteralToken(INT, int32(42), "42", 3)
	want := Token{TokenType: INT, Lexeme: "42", Literal: int32(42), Line: 3}
	if got != want {
		t.Errorf("CreateLiteralToken() = %v, want %v", got, want)
	}
}

func TestIsAssignOp(t *testing.T) {
	if !CreateToken(PLUS_ASSIGN, "+=", 1).IsAssignOp() {
		t.Errorf("expected +%s to be recognized as a compound assignment", PLUS_ASSIGN)
	}
	if CreateToken(ADD, "+", 1).IsAssignOp() {
		t.Errorf("did not expect %s to be recognized as an assignment operator", ADD)
	}
}

func TestKeyWordsLookup(t *testing.T) {
	tokenType, ok := KeyWords["fn"]
	if !ok || tokenType != FUNC {
		t.Errorf("expected 'fn' to map to FUNC, got %v, ok=%v", tokenType, ok)
	}
	if _, ok := KeyWords["notAKeyword"]; ok {
		t.Errorf("did not expect 'notAKeyword' to be a keyword")
	}
}
