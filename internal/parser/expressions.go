package parser

import (
	"github.com/minond/sourdough/internal/ast"
	"github.com/minond/sourdough/internal/diagnostics"
	"github.com/minond/sourdough/internal/token"
)

// parseExpr implements the algorithm of spec.md §4.2: an optional prefix
// application, then a continuation loop over postfix/infix/call
// continuations, with the precedence-rotation tie-break for infix chains.
func (p *Parser) parseExpr() (ast.Expr, error) {
	cur, err := p.parseExprHead()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.cur()

		if tok.Type == token.Id {
			if _, ok := p.table.IsPostfix(tok.Lexeme); ok {
				opTok := p.advance()
				cur = &ast.Uniop{Op: &ast.Id{Name: opTok.Lexeme, L: opTok.Loc}, Sub: cur, L: opTok.Loc}
				continue
			}
			if prec, ok := p.table.IsInfix(tok.Lexeme); ok {
				opTok := p.advance()
				rhs, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				cur = rotate(opTok, prec, cur, rhs, p.table)
				continue
			}
		}

		if tok.Type == token.LParen {
			p.advance()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			cur = &ast.App{Fn: cur, Args: args, L: cur.Loc()}
			continue
		}

		break
	}

	return cur, nil
}

// rotate applies the tie-break rule: if rhs is itself a Binop(op2, ...)
// whose infix precedence is no higher than op's, the two Binops swap
// nesting so op binds tighter (spec.md §4.2, §8 property 3). Equal
// precedence also rotates — that's what makes "a - b - c" lean left
// instead of right-nesting as "a-(b-c)".
func rotate(opTok token.Token, prec int, lhs ast.Expr, rhs ast.Expr, table interface {
	InfixPrecedence(string) int
}) ast.Expr {
	opId := &ast.Id{Name: opTok.Lexeme, L: opTok.Loc}
	if rhsBinop, ok := rhs.(*ast.Binop); ok {
		prec2 := table.InfixPrecedence(rhsBinop.Op.Name)
		if prec2 >= 0 && prec >= prec2 {
			return &ast.Binop{
				Op: rhsBinop.Op,
				Lhs: &ast.Binop{
					Op:  opId,
					Lhs: lhs,
					Rhs: rhsBinop.Lhs,
					L:   opTok.Loc,
				},
				Rhs: rhsBinop.Rhs,
				L:   rhsBinop.L,
			}
		}
	}
	return &ast.Binop{Op: opId, Lhs: lhs, Rhs: rhs, L: opTok.Loc}
}

// parseExprHead handles step 1 of §4.2: an optional registered prefix
// operator wrapping a primary expression.
func (p *Parser) parseExprHead() (ast.Expr, error) {
	tok := p.cur()
	if tok.Type == token.Id {
		if _, ok := p.table.IsPrefix(tok.Lexeme); ok {
			opTok := p.advance()
			sub, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return &ast.Uniop{Op: &ast.Id{Name: opTok.Lexeme, L: opTok.Loc}, Sub: sub, L: opTok.Loc}, nil
		}
	}
	return p.parsePrimary()
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	var args []ast.Expr
	for p.cur().Type != token.RParen {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Type == token.Comma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()

	switch tok.Type {
	case token.Num:
		p.advance()
		return &ast.Num{Lexeme: tok.Lexeme, L: tok.Loc}, nil
	case token.Str:
		p.advance()
		return &ast.Str{Value: tok.Lexeme, L: tok.Loc}, nil
	case token.Symbol:
		p.advance()
		return &ast.Symbol{Name: tok.Lexeme, L: tok.Loc}, nil
	case token.LParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return inner, nil
	case token.Id:
		switch tok.Lexeme {
		case "func":
			return p.parseFunc()
		case "if":
			return p.parseIf()
		case "let":
			return p.parseLet()
		case "begin":
			return p.parseBegin()
		default:
			p.advance()
			return &ast.Id{Name: tok.Lexeme, L: tok.Loc}, nil
		}
	case token.Eof:
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrUnexpectedEof, tok.Loc)
	default:
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrUnexpectedToken, tok.Loc, tok.Lexeme)
	}
}

func (p *Parser) parseFunc() (*ast.Lambda, error) {
	funcTok, err := p.expectId("func")
	if err != nil {
		return nil, err
	}
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
	return &ast.Lambda{Params: params, Body: body, L: funcTok.Loc}, nil
}

func (p *Parser) parseIf() (*ast.Cond, error) {
	ifTok, err := p.expectId("if")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectId("then"); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectId("else"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Cond{If: cond, Then: then, Else: els, L: ifTok.Loc}, nil
}

func (p *Parser) parseLet() (*ast.Let, error) {
	letTok, err := p.expectId("let")
	if err != nil {
		return nil, err
	}
	var bindings []ast.Binding
	for {
		nameTok, err := p.expect(token.Id)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Equal); err != nil {
			return nil, err
		}
		// A binding's value can never be the bare reserved word "in": that
		// would mean the value was omitted entirely (spec.md §8 scenario
		// S5). Treating it as a plain identifier there would silently
		// accept malformed input, so it is called out explicitly.
		if p.curIsId("in") {
			return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrMissingExpectedToken, p.cur().Loc, "expression")
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Name: &ast.Id{Name: nameTok.Lexeme, L: nameTok.Loc}, Value: value})
		if p.curIsId("in") {
			break
		}
	}
	if _, err := p.expectId("in"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Let{Bindings: bindings, Body: body, L: letTok.Loc}, nil
}

func (p *Parser) parseBegin() (*ast.Begin, error) {
	beginTok, err := p.expectId("begin")
	if err != nil {
		return nil, err
	}
	if p.curIsId("end") {
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrEmptyBeginNotAllowed, beginTok.Loc)
	}
	head, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var tail []ast.Expr
	for !p.curIsId("end") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		tail = append(tail, e)
	}
	if _, err := p.expectId("end"); err != nil {
		return nil, err
	}
	return &ast.Begin{Head: head, Tail: tail, L: beginTok.Loc}, nil
}
