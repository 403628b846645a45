package lexer

import (
	"unicode"

	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

// Lexer turns C-minus source into tokens, whitespace and comments included.
// Malformed input is reported to the diagnostics list and skipped.
type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
	cfg       *config.Config
	diags     *diag.List
}

func NewLexer(source []rune, fileIndex int, cfg *config.Config, diags *diag.List) *Lexer {
	return &Lexer{
		source: source, fileIndex: fileIndex, line: 1, column: 1, cfg: cfg, diags: diags,
	}
}

func (l *Lexer) Next() token.Token {
	for {
		startPos, startCol, startLine := l.pos, l.column, l.line
		if l.isAtEnd() {
			return l.makeToken(token.EOF, startPos, startCol, startLine)
		}

		ch := l.advance()
		switch {
		case isSpace(ch):
			for isSpace(l.peek()) {
				l.advance()
			}
			return l.makeToken(token.WHITESPACE, startPos, startCol, startLine)
		case isLetter(ch):
			return l.identifierOrKeyword(startPos, startCol, startLine)
		case isDigit(ch):
			if tok, ok := l.number(startPos, startCol, startLine); ok {
				return tok
			}
			continue
		}

		switch ch {
		case ';', ':', ',', '[', ']', '(', ')', '{', '}', '+', '-', '<':
			return l.makeToken(token.SYMBOL, startPos, startCol, startLine)
		case '=':
			l.match('=')
			return l.makeToken(token.SYMBOL, startPos, startCol, startLine)
		case '*':
			if l.peek() == '/' {
				l.advance()
				l.diags.Lexical(startLine, "*/", "Unmatched comment")
				continue
			}
			return l.makeToken(token.SYMBOL, startPos, startCol, startLine)
		case '/':
			switch {
			case l.peek() == '*':
				l.advance()
				if l.blockComment(startPos, startLine) {
					return l.makeToken(token.COMMENT, startPos, startCol, startLine)
				}
				continue
			case l.peek() == '/' && l.cfg.IsFeatureEnabled(config.FeatLineComments):
				for !l.isAtEnd() && l.peek() != '\n' {
					l.advance()
				}
				return l.makeToken(token.COMMENT, startPos, startCol, startLine)
			}
			return l.makeToken(token.SYMBOL, startPos, startCol, startLine)
		}

		l.diags.Lexical(startLine, string(ch), "Invalid input")
	}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(kind token.Kind, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Kind: kind, Lexeme: string(l.source[startPos:l.pos]), FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	tok := l.makeToken(token.ID, startPos, startCol, startLine)
	if token.Keywords[tok.Lexeme] && (tok.Lexeme != "output" || l.cfg.IsFeatureEnabled(config.FeatOutput)) {
		tok.Kind = token.KEYWORD
	}
	return tok
}

// number scans a decimal literal. Letters glued to the digits make the whole
// run an invalid number, which is reported and dropped.
func (l *Lexer) number(startPos, startCol, startLine int) (token.Token, bool) {
	for isDigit(l.peek()) {
		l.advance()
	}
	if !isLetter(l.peek()) {
		return l.makeToken(token.NUM, startPos, startCol, startLine), true
	}
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	l.diags.Lexical(startLine, string(l.source[startPos:l.pos]), "Invalid number")
	return token.Token{}, false
}

// blockComment consumes up to and including the closing "*/". An unclosed
// comment swallows the rest of the input and is reported by its first
// characters.
func (l *Lexer) blockComment(startPos, startLine int) bool {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/' {
			l.advance()
			l.advance()
			return true
		}
		l.advance()
	}
	text := l.source[startPos:l.pos]
	if len(text) > 7 {
		text = append(text[:7:7], []rune("...")...)
	}
	l.diags.Lexical(startLine, string(text), "Unclosed comment")
	return false
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t' || ch == '\v' || ch == '\f'
}

func isLetter(ch rune) bool { return ch < unicode.MaxASCII && unicode.IsLetter(ch) }
func isDigit(ch rune) bool  { return ch >= '0' && ch <= '9' }
