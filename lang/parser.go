package lang

import (
	"fmt"
	"strings"
)

// Parser parses one dialect of mini-language source into the shared AST.
type Parser struct {
	lexer   *Lexer
	dialect Dialect
	cur     Token
	peek    Token
}

// NewParser creates a parser for the given source and dialect.
func NewParser(source string, dialect Dialect) *Parser {
	p := &Parser{lexer: NewLexer(source, dialect), dialect: dialect}
	p.nextToken()
	p.nextToken()
	return p
}

// Compile parses source and resolves every routine call. The entry routine
// must exist; its absence is reported as a *NoEntryError naming the
// dialect's expected spelling.
func Compile(source string, dialect Dialect) (*Program, error) {
	prog, err := NewParser(source, dialect).ParseProgram()
	if err != nil {
		return nil, err
	}
	if _, ok := prog.Routines[EntryPoint]; !ok {
		return nil, &NoEntryError{Dialect: dialect}
	}
	if err := resolveCalls(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// Validate reports whether source is a runnable program without executing
// it.
func Validate(source string, dialect Dialect) error {
	_, err := Compile(source, dialect)
	return err
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(pos Pos, format string, args ...any) error {
	return &ParseError{Dialect: p.dialect, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(t TokenType) error {
	if p.cur.Type == TokenIllegal {
		return p.errorf(p.cur.Pos, "%s", p.cur.Literal)
	}
	if p.cur.Type != t {
		return p.errorf(p.cur.Pos, "expected %v, got %v", t, p.cur.Type)
	}
	p.nextToken()
	return nil
}

func (p *Parser) curIsKeyword(words ...string) bool {
	if p.cur.Type != TokenIdent {
		return false
	}
	for _, w := range words {
		if p.cur.Literal == w {
			return true
		}
	}
	return false
}

// ParseProgram parses all routine definitions in the source.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{Dialect: p.dialect, Routines: make(map[string]*Routine)}
	for p.cur.Type != TokenEOF {
		r, err := p.parseRoutine()
		if err != nil {
			return nil, err
		}
		if _, dup := prog.Routines[r.Name]; dup {
			return nil, p.errorf(r.Pos, "routine %q defined twice", r.Name)
		}
		prog.Routines[r.Name] = r
	}
	return prog, nil
}

func (p *Parser) parseRoutine() (*Routine, error) {
	keyword := "function"
	if p.dialect == Python || p.dialect == Ruby {
		keyword = "def"
	}
	if !p.curIsKeyword(keyword) {
		if p.cur.Type == TokenIllegal {
			return nil, p.errorf(p.cur.Pos, "%s", p.cur.Literal)
		}
		return nil, p.errorf(p.cur.Pos, "expected %q, got %q", keyword, p.cur.Literal)
	}
	pos := p.cur.Pos
	p.nextToken()

	if p.cur.Type != TokenIdent {
		return nil, p.errorf(p.cur.Pos, "expected routine name after %q", keyword)
	}
	name := strings.TrimSuffix(p.cur.Literal, "?")
	p.nextToken()

	// Parameter list: required outside Ruby, optional there. Parameters
	// themselves are not part of the language.
	if p.cur.Type == TokenLParen {
		p.nextToken()
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
	} else if p.dialect != Ruby {
		return nil, p.errorf(p.cur.Pos, "expected '()' after routine name")
	}

	body, err := p.parseBlock("end")
	if err != nil {
		return nil, err
	}
	return &Routine{Name: name, Pos: pos, Body: body}, nil
}

// parseBlock parses one dialect-appropriate block. For the end-terminated
// dialects, terminator is the keyword that closes the block and is
// consumed.
func (p *Parser) parseBlock(terminator string) ([]Stmt, error) {
	switch p.dialect {
	case JavaScript:
		if err := p.expect(TokenLBrace); err != nil {
			return nil, err
		}
		stmts, err := p.parseStmtsUntilType(TokenRBrace)
		if err != nil {
			return nil, err
		}
		return stmts, p.expect(TokenRBrace)
	case Python:
		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		if err := p.expect(TokenIndent); err != nil {
			return nil, err
		}
		stmts, err := p.parseStmtsUntilType(TokenDedent)
		if err != nil {
			return nil, err
		}
		return stmts, p.expect(TokenDedent)
	default:
		stmts, err := p.parseStmtsUntilKeyword(terminator)
		if err != nil {
			return nil, err
		}
		p.nextToken() // consume the terminator
		return stmts, nil
	}
}

func (p *Parser) parseStmtsUntilType(t TokenType) ([]Stmt, error) {
	var stmts []Stmt
	for p.cur.Type != t {
		if p.cur.Type == TokenEOF {
			return nil, p.errorf(p.cur.Pos, "unexpected end of input, expected %v", t)
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// parseStmtsUntilKeyword parses statements up to (not consuming) one of
// the given closing keywords.
func (p *Parser) parseStmtsUntilKeyword(words ...string) ([]Stmt, error) {
	var stmts []Stmt
	for !p.curIsKeyword(words...) {
		if p.cur.Type == TokenEOF {
			return nil, p.errorf(p.cur.Pos, "unexpected end of input, expected %q", words[0])
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (Stmt, error) {
	if p.cur.Type == TokenIllegal {
		return nil, p.errorf(p.cur.Pos, "%s", p.cur.Literal)
	}
	if p.cur.Type != TokenIdent {
		return nil, p.errorf(p.cur.Pos, "expected a statement, got %v", p.cur.Type)
	}
	switch p.cur.Literal {
	case "while":
		return p.parseWhile()
	case "if":
		return p.parseIf()
	default:
		return p.parseCall()
	}
}

func (p *Parser) parseCall() (Stmt, error) {
	pos := p.cur.Pos
	name := strings.TrimSuffix(p.cur.Literal, "?")
	p.nextToken()
	if p.cur.Type == TokenLParen {
		p.nextToken()
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
	}
	if cmd, ok := actionNames[name]; ok {
		return &ActionStmt{Command: cmd, Pos: pos}, nil
	}
	if _, isSensor := sensorNames[name]; isSensor {
		return nil, p.errorf(pos, "sensor %q used as a statement", name)
	}
	// Unknown names become routine calls; Compile verifies they resolve.
	return &RoutineCall{Name: name, Pos: pos}, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	pos := p.cur.Pos
	p.nextToken()

	cond, err := p.parseCondHeader()
	if err != nil {
		return nil, err
	}

	var body []Stmt
	switch p.dialect {
	case JavaScript, Python:
		body, err = p.parseBlock("")
	case Ruby:
		// Ruby allows an optional "do" before the body.
		if p.curIsKeyword("do") {
			p.nextToken()
		}
		body, err = p.parseBlock("end")
	default: // Lua
		if !p.curIsKeyword("do") {
			return nil, p.errorf(p.cur.Pos, "expected %q after while condition", "do")
		}
		p.nextToken()
		body, err = p.parseBlock("end")
	}
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body, Pos: pos}, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	switch p.dialect {
	case JavaScript:
		return p.parseBraceIf()
	case Python:
		return p.parsePythonIf()
	default:
		return p.parseEndIf()
	}
}

// parseBraceIf parses if (cond) { ... } [else if ... | else { ... }].
func (p *Parser) parseBraceIf() (Stmt, error) {
	pos := p.cur.Pos
	p.nextToken()
	cond, err := p.parseCondHeader()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock("")
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then, Pos: pos}
	if p.curIsKeyword("else") {
		p.nextToken()
		if p.curIsKeyword("if") {
			nested, err := p.parseBraceIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = []Stmt{nested}
		} else {
			stmt.Else, err = p.parseBlock("")
			if err != nil {
				return nil, err
			}
		}
	}
	return stmt, nil
}

// parsePythonIf parses if cond: ... [elif ... | else: ...].
func (p *Parser) parsePythonIf() (Stmt, error) {
	pos := p.cur.Pos
	p.nextToken()
	cond, err := p.parseCondHeader()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock("")
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then, Pos: pos}
	switch {
	case p.curIsKeyword("elif"):
		nested, err := p.parsePythonIf()
		if err != nil {
			return nil, err
		}
		stmt.Else = []Stmt{nested}
	case p.curIsKeyword("else"):
		p.nextToken()
		stmt.Else, err = p.parseBlock("")
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseEndIf parses the Ruby/Lua chain
// if cond [then] ... [elsif|elseif ...] [else ...] end,
// consuming the single shared "end".
func (p *Parser) parseEndIf() (Stmt, error) {
	elseKeyword := "elsif"
	if p.dialect == Lua {
		elseKeyword = "elseif"
	}

	pos := p.cur.Pos
	p.nextToken()
	cond, err := p.parseCondHeader()
	if err != nil {
		return nil, err
	}
	if p.dialect == Lua {
		if !p.curIsKeyword("then") {
			return nil, p.errorf(p.cur.Pos, "expected %q after if condition", "then")
		}
		p.nextToken()
	} else if p.curIsKeyword("then") {
		p.nextToken()
	}

	then, err := p.parseStmtsUntilKeyword(elseKeyword, "else", "end")
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then, Pos: pos}

	switch p.cur.Literal {
	case elseKeyword:
		// The nested if consumes the shared "end".
		nested, err := p.parseEndIf()
		if err != nil {
			return nil, err
		}
		stmt.Else = []Stmt{nested}
	case "else":
		p.nextToken()
		stmt.Else, err = p.parseStmtsUntilKeyword("end")
		if err != nil {
			return nil, err
		}
		p.nextToken()
	default: // "end"
		p.nextToken()
	}
	return stmt, nil
}

// parseCondHeader parses the condition of a while/if header. JavaScript
// requires the surrounding parentheses; the other dialects take a bare
// expression.
func (p *Parser) parseCondHeader() (Expr, error) {
	if p.dialect == JavaScript {
		if err := p.expect(TokenLParen); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return cond, p.expect(TokenRParen)
	}
	return p.parseExpr()
}

// Expression grammar: or-expr > and-expr > unary > primary.

func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOr || p.curIsKeyword("or") {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrExpr{L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenAnd || p.curIsKeyword("and") {
		p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &AndExpr{L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.cur.Type == TokenBang || p.curIsKeyword("not") {
		p.nextToken()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	pos := p.cur.Pos
	switch {
	case p.cur.Type == TokenLParen:
		p.nextToken()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return e, p.expect(TokenRParen)
	case p.cur.Type == TokenIdent:
		name := strings.TrimSuffix(p.cur.Literal, "?")
		switch name {
		case "true", "True":
			p.nextToken()
			return &BoolLit{Value: true, Pos: pos}, nil
		case "false", "False":
			p.nextToken()
			return &BoolLit{Value: false, Pos: pos}, nil
		}
		if det, ok := sensorNames[name]; ok {
			p.nextToken()
			if p.cur.Type == TokenLParen {
				p.nextToken()
				if err := p.expect(TokenRParen); err != nil {
					return nil, err
				}
			}
			return &SensorExpr{Detector: det, Pos: pos}, nil
		}
		if _, isAction := actionNames[name]; isAction {
			return nil, p.errorf(pos, "action %q used in a condition", name)
		}
		return nil, p.errorf(pos, "unknown sensor %q", name)
	case p.cur.Type == TokenIllegal:
		return nil, p.errorf(pos, "%s", p.cur.Literal)
	default:
		return nil, p.errorf(pos, "expected a condition, got %v", p.cur.Type)
	}
}

// resolveCalls verifies that every routine call targets a defined routine.
func resolveCalls(prog *Program) error {
	var check func(stmts []Stmt) error
	check = func(stmts []Stmt) error {
		for _, s := range stmts {
			switch n := s.(type) {
			case *RoutineCall:
				if _, ok := prog.Routines[n.Name]; !ok {
					return &ParseError{
						Dialect: prog.Dialect,
						Pos:     n.Pos,
						Msg:     fmt.Sprintf("unknown command or routine %q", n.Name),
					}
				}
			case *WhileStmt:
				if err := check(n.Body); err != nil {
					return err
				}
			case *IfStmt:
				if err := check(n.Then); err != nil {
					return err
				}
				if err := check(n.Else); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, r := range prog.Routines {
		if err := check(r.Body); err != nil {
			return err
		}
	}
	return nil
}
