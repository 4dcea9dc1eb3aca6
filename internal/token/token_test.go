package token_test

import (
	"testing"

	"github.com/minond/sourdough/internal/token"
)

func TestIsReservedCoversKeywords(t *testing.T) {
	for _, word := range []string{"def", "func", "if", "then", "else", "let", "in", "begin", "end", "opcode", "operator", "true", "false"} {
		if !token.IsReserved(word) {
			t.Errorf("expected %q to be reserved", word)
		}
	}
	if token.IsReserved("notareservedword") {
		t.Error("got true for a made-up identifier")
	}
}

func TestLocationStringWithSource(t *testing.T) {
	loc := token.Location{Source: "main.fx", Line: 3, Column: 7}
	if got, want := loc.String(), "main.fx:3:7"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLocationStringWithoutSource(t *testing.T) {
	loc := token.Location{Line: 1, Column: 1}
	if got, want := loc.String(), "1:1"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTokenIsEof(t *testing.T) {
	if (token.Token{Type: token.Eof}).IsEof() != true {
		t.Fatal("expected an Eof-typed token to report IsEof() == true")
	}
	if (token.Token{Type: token.Id, Lexeme: "x"}).IsEof() {
		t.Fatal("expected a non-Eof token to report IsEof() == false")
	}
}
