// Package parser implements the Pratt-style expression parser and the
// statement/top-level layer described in spec.md §4.2.
//
// The parser threads a syntax.Table value through the top-level loop
// rather than mutating a shared global: each Parser owns exactly one
// Table field, and operator declarations replace it with a new value
// (spec.md §9).
package parser

import (
	"strconv"
	"strings"

	"github.com/minond/sourdough/internal/ast"
	"github.com/minond/sourdough/internal/diagnostics"
	"github.com/minond/sourdough/internal/syntax"
	"github.com/minond/sourdough/internal/token"
)

// Parser holds the token stream position and the current syntax table.
type Parser struct {
	toks  []token.Token
	pos   int
	table syntax.Table
}

// New creates a parser over toks (comments already filtered out).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, table: syntax.New()}
}

// Parse builds a fresh Parser over toks (already lexed, comments already
// filtered out) and parses the whole tree in one call.
func Parse(toks []token.Token) (ast.Tree, error) {
	return New(toks).ParseTree()
}

func (p *Parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Type: token.Eof}
}

func (p *Parser) peekN(n int) token.Token {
	idx := p.pos + n
	if idx < len(p.toks) {
		return p.toks[idx]
	}
	return token.Token{Type: token.Eof}
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) atEof() bool { return p.cur().Type == token.Eof }

// curIsId reports whether the current token is an Id with the given
// reserved-word lexeme.
func (p *Parser) curIsId(lexeme string) bool {
	t := p.cur()
	return t.Type == token.Id && t.Lexeme == lexeme
}

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	t := p.cur()
	if t.Type != tt {
		if t.IsEof() {
			return token.Token{}, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrUnexpectedEof, t.Loc)
		}
		return token.Token{}, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrMissingExpectedToken, t.Loc, string(tt))
	}
	return p.advance(), nil
}

func (p *Parser) expectId(lexeme string) (token.Token, error) {
	t := p.cur()
	if t.Type != token.Id || t.Lexeme != lexeme {
		if t.IsEof() {
			return token.Token{}, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrUnexpectedEof, t.Loc)
		}
		return token.Token{}, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrMissingExpectedToken, t.Loc, lexeme)
	}
	return p.advance(), nil
}

// ParseTree runs the top-level loop: each node is either appended to the
// tree or, if it is a well-formed operator(...) declaration, folded into
// the syntax table and dropped (spec.md §4.2).
func (p *Parser) ParseTree() (ast.Tree, error) {
	var tree ast.Tree
	for !p.atEof() {
		node, consumed, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if consumed {
			continue
		}
		tree = append(tree, node)
	}
	return tree, nil
}

func (p *Parser) parseTopLevel() (ast.Node, bool, error) {
	switch {
	case p.curIsId("def"):
		d, err := p.parseDef()
		return d, false, err
	case p.curIsId("module"):
		m, err := p.parseModule()
		return m, false, err
	case p.curIsId("import"):
		i, err := p.parseImport()
		return i, false, err
	default:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, false, err
		}
		decl, ok, err := p.tryOperatorDecl(expr)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return nil, true, nil
		}
		_ = decl
		return expr, false, nil
	}
}

// tryOperatorDecl recognizes App(Id("operator"), [Symbol(class), Num(n),
// Symbol(name)]) and, if the shape matches, extends p.table and reports
// ok=true. Any App whose function is the reserved "operator" identifier
// but whose shape does not match is a BadOperatorDefinitionErr.
func (p *Parser) tryOperatorDecl(expr ast.Expr) (ast.Expr, bool, error) {
	app, ok := expr.(*ast.App)
	if !ok {
		return expr, false, nil
	}
	fn, ok := app.Fn.(*ast.Id)
	if !ok || fn.Name != "operator" {
		return expr, false, nil
	}
	if len(app.Args) != 3 {
		return nil, false, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrBadOperatorDefinition, app.L, "expected 3 arguments: class, precedence, name")
	}
	class, ok := app.Args[0].(*ast.Symbol)
	if !ok {
		return nil, false, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrBadOperatorDefinition, app.L, "first argument must be a symbol ('prefix, 'infix, or 'postfix)")
	}
	numNode, ok := app.Args[1].(*ast.Num)
	if !ok {
		return nil, false, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrBadOperatorDefinition, app.L, "second argument must be a precedence number")
	}
	name, ok := app.Args[2].(*ast.Symbol)
	if !ok {
		return nil, false, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrBadOperatorDefinition, app.L, "third argument must be a symbol naming the operator")
	}
	prec, err := strconv.Atoi(strings.TrimSuffix(numNode.Lexeme, ".0"))
	if err != nil {
		prec64, ferr := strconv.ParseFloat(numNode.Lexeme, 64)
		if ferr != nil {
			return nil, false, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrBadOperatorDefinition, app.L, "precedence must be a whole number")
		}
		prec = int(prec64)
	}
	if prec < 0 || prec > 99 {
		return nil, false, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrBadOperatorDefinition, app.L, "precedence must be between 0 and 99")
	}
	switch class.Name {
	case "prefix":
		p.table = p.table.WithPrefix(name.Name, prec)
	case "infix":
		p.table = p.table.WithInfix(name.Name, prec)
	case "postfix":
		p.table = p.table.WithPostfix(name.Name, prec)
	default:
		return nil, false, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrBadOperatorDefinition, app.L, "operator class must be 'prefix, 'infix, or 'postfix")
	}
	return nil, true, nil
}

func (p *Parser) parseDef() (*ast.Def, error) {
	defTok, err := p.expectId("def")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Id)
	if err != nil {
		return nil, err
	}
	name := &ast.Id{Name: nameTok.Lexeme, L: nameTok.Loc}

	var value ast.Expr
	if p.cur().Type == token.LParen {
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Equal); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		value = &ast.Lambda{Params: params, Body: body, L: defTok.Loc}
	} else {
		if _, err := p.expect(token.Equal); err != nil {
			return nil, err
		}
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return &ast.Def{Name: name, Value: value, L: defTok.Loc}, nil
}

func (p *Parser) parseModule() (*ast.Module, error) {
	tok, err := p.expectId("module")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Id)
	if err != nil {
		return nil, err
	}
	return &ast.Module{Name: &ast.Id{Name: nameTok.Lexeme, L: nameTok.Loc}, L: tok.Loc}, nil
}

func (p *Parser) parseImport() (*ast.Import, error) {
	tok, err := p.expectId("import")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Id)
	if err != nil {
		return nil, err
	}
	return &ast.Import{Name: &ast.Id{Name: nameTok.Lexeme, L: nameTok.Loc}, L: tok.Loc}, nil
}

// parseParamList parses "(p1[:T1], p2[:T2], ...)" including the
// surrounding parens.
func (p *Parser) parseParamList() ([]ast.Param, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var params []ast.Param
	for p.cur().Type != token.RParen {
		nameTok, err := p.expect(token.Id)
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: &ast.Id{Name: nameTok.Lexeme, L: nameTok.Loc}}
		if p.cur().Type == token.Colon {
			p.advance()
			tyTok, err := p.expect(token.Id)
			if err != nil {
				return nil, err
			}
			param.Ty = &ast.Id{Name: tyTok.Lexeme, L: tyTok.Loc}
		}
		params = append(params, param)
		if p.cur().Type == token.Comma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return params, nil
}
