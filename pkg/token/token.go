package token

import "fmt"

type Kind int

const (
	EOF Kind = iota
	ID
	NUM
	KEYWORD
	SYMBOL
	WHITESPACE
	COMMENT
)

var kindNames = [...]string{
	EOF:        "EOF",
	ID:         "ID",
	NUM:        "NUM",
	KEYWORD:    "KEYWORD",
	SYMBOL:     "SYMBOL",
	WHITESPACE: "WHITESPACE",
	COMMENT:    "COMMENT",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Keywords of C-minus. "output" is the printing builtin and can be turned
// off, in which case it scans as an ordinary identifier.
var Keywords = map[string]bool{
	"if": true, "else": true, "endif": true, "void": true, "int": true,
	"while": true, "break": true, "switch": true, "default": true,
	"case": true, "return": true, "output": true,
}

type Token struct {
	Kind      Kind
	Lexeme    string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// Terminal is the grammar symbol the parse table is indexed by: "$" at end of
// input, the lexeme for keywords and symbols, the kind name otherwise.
func (t Token) Terminal() string {
	switch t.Kind {
	case EOF:
		return "$"
	case KEYWORD, SYMBOL:
		return t.Lexeme
	}
	return t.Kind.String()
}

// IsTrivia reports tokens the parser never sees.
func (t Token) IsTrivia() bool { return t.Kind == WHITESPACE || t.Kind == COMMENT }

// String renders the token the way it appears in parse trees: (KIND, lexeme).
func (t Token) String() string {
	if t.Kind == EOF {
		return "$"
	}
	return fmt.Sprintf("(%s, %s)", t.Kind, t.Lexeme)
}
