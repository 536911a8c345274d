package lang

import "fmt"

// TokenType identifies a lexer token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenLParen  // (
	TokenRParen  // )
	TokenLBrace  // {
	TokenRBrace  // }
	TokenColon   // :
	TokenBang    // !
	TokenAnd     // &&
	TokenOr      // ||
	TokenIndent  // Python block open
	TokenDedent  // Python block close
	TokenIllegal // unexpected input; Literal holds a message
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return "identifier"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenColon:
		return "':'"
	case TokenBang:
		return "'!'"
	case TokenAnd:
		return "'&&'"
	case TokenOr:
		return "'||'"
	case TokenIndent:
		return "indent"
	case TokenDedent:
		return "dedent"
	default:
		return "illegal token"
	}
}

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a single token from the lexer.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Pos
}

// Lexer tokenizes mini-language source in one dialect. Only the Python
// dialect treats line structure as significant; there the lexer emits
// Indent/Dedent pairs around each block.
type Lexer struct {
	input   string
	dialect Dialect
	pos     int
	readPos int
	ch      byte

	line int
	col  int

	atLineStart bool
	indents     []int
	pending     []Token
}

// NewLexer creates a lexer for the given source and dialect.
func NewLexer(input string, dialect Dialect) *Lexer {
	l := &Lexer{
		input:       input,
		dialect:     dialect,
		line:        1,
		col:         0,
		atLineStart: dialect == Python,
		indents:     []int{0},
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) here() Pos {
	return Pos{Line: l.line, Col: l.col}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	for {
		if len(l.pending) > 0 {
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok
		}
		if l.dialect == Python && l.atLineStart {
			if tok, ok := l.lineStart(); ok {
				return tok
			}
		}
		l.skipSpace()
		if l.dialect == Python && l.atLineStart {
			continue
		}
		break
	}

	pos := l.here()
	switch l.ch {
	case 0:
		if l.dialect == Python {
			// Close any open blocks before the end of input.
			for len(l.indents) > 1 {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, Token{Type: TokenDedent, Pos: pos})
			}
			if len(l.pending) > 0 {
				return l.NextToken()
			}
		}
		return Token{Type: TokenEOF, Pos: pos}
	case '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}
	case ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}
	case '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos}
	case '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos}
	case ':':
		l.readChar()
		return Token{Type: TokenColon, Literal: ":", Pos: pos}
	case '!':
		l.readChar()
		return Token{Type: TokenBang, Literal: "!", Pos: pos}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenAnd, Literal: "&&", Pos: pos}
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOr, Literal: "||", Pos: pos}
		}
	}

	if isIdentStart(l.ch) {
		return Token{Type: TokenIdent, Literal: l.readIdent(), Pos: pos}
	}

	bad := string(l.ch)
	l.readChar()
	return Token{Type: TokenIllegal, Literal: fmt.Sprintf("unexpected character %q", bad), Pos: pos}
}

// skipSpace consumes whitespace and comments. Outside the Python dialect
// newlines are plain whitespace; in Python a newline rearms line-start
// processing.
func (l *Lexer) skipSpace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == ';':
			// Statement-terminating semicolons carry no structure here.
			l.readChar()
		case l.ch == '\n':
			l.readChar()
			if l.dialect == Python {
				// Hand control back to NextToken so indentation tokens
				// come out before the next real token.
				l.atLineStart = true
				return
			}
		case l.isCommentStart():
			l.skipComment()
		default:
			return
		}
	}
}

func (l *Lexer) isCommentStart() bool {
	switch l.dialect {
	case JavaScript:
		return l.ch == '/' && (l.peekChar() == '/' || l.peekChar() == '*')
	case Lua:
		return l.ch == '-' && l.peekChar() == '-'
	default:
		return l.ch == '#'
	}
}

func (l *Lexer) skipComment() {
	if l.dialect == JavaScript && l.peekChar() == '*' {
		l.readChar()
		l.readChar()
		for l.ch != 0 {
			if l.ch == '*' && l.peekChar() == '/' {
				l.readChar()
				l.readChar()
				return
			}
			l.readChar()
		}
		return
	}
	// Line comment: skip to end of line, leaving the newline for skipSpace
	// so Python line handling still sees it.
	for l.ch != 0 && l.ch != '\n' {
		l.readChar()
	}
}

// lineStart handles Python indentation. It consumes the indentation of the
// next non-blank, non-comment line and returns an Indent/Dedent token when
// the level changed.
func (l *Lexer) lineStart() (Token, bool) {
	l.atLineStart = false
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' {
			if l.ch == '\t' {
				width += 8 - width%8
			} else {
				width++
			}
			l.readChar()
		}
		// Blank and comment-only lines never affect indentation.
		if l.ch == '#' {
			l.skipComment()
		}
		if l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == 0 {
			return Token{}, false // EOF path emits the closing dedents
		}

		pos := l.here()
		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			return Token{Type: TokenIndent, Pos: pos}, true
		case width < top:
			var toks []Token
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				toks = append(toks, Token{Type: TokenDedent, Pos: pos})
			}
			if l.indents[len(l.indents)-1] != width {
				toks = append(toks, Token{
					Type:    TokenIllegal,
					Literal: "inconsistent indentation",
					Pos:     pos,
				})
			}
			l.pending = append(l.pending, toks[1:]...)
			return toks[0], true
		default:
			return Token{}, false
		}
	}
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for isIdentChar(l.ch) {
		l.readChar()
	}
	// Ruby predicates may end in '?'; fold it into the identifier.
	if l.dialect == Ruby && l.ch == '?' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || ch >= '0' && ch <= '9'
}
