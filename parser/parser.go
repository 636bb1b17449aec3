// Package parser implements the assembler's recursive-descent grammar: it
// walks tokens from a lexer.Tokenizer one token of lookahead at a time and
// drives a codegen.Generator through both of its passes.
package parser

import (
	"strconv"

	"github.com/berdon/asmx86/asmerr"
	"github.com/berdon/asmx86/codegen"
	"github.com/berdon/asmx86/cpuinfo"
	"github.com/berdon/asmx86/lexer"
	"github.com/berdon/asmx86/token"
)

// Parser drives a tokenizer and a generator together, running the
// generator's first pass over the whole token stream, reinitializing the
// tokenizer, advancing the generator to its second pass, and running the
// same grammar over the stream again.
type Parser struct {
	lex *lexer.Tokenizer
	gen *codegen.Generator

	tok     token.Token
	peekTok token.Token

	errs *asmerr.List
}

// New creates a parser over lex, driving gen.
func New(lex *lexer.Tokenizer, gen *codegen.Generator) *Parser {
	p := &Parser{lex: lex, gen: gen, errs: &asmerr.List{}}
	p.prime()
	return p
}

func (p *Parser) prime() {
	p.tok = p.lex.NextToken()
	p.peekTok = p.lex.NextToken()
}

func (p *Parser) advance() {
	p.tok = p.peekTok
	p.peekTok = p.lex.NextToken()
}

// Run executes both generator passes over the source and returns any
// errors accumulated along the way. Assembly stops at the first error in
// either pass.
func (p *Parser) Run() *asmerr.List {
	p.runPass()
	if !p.errs.HasErrors() && p.lex.Errors().HasErrors() {
		p.errs.Add(p.lex.Errors().First())
	}
	if p.errs.HasErrors() {
		return p.errs
	}

	if err := p.gen.NextPass(p.tok.Pos); err != nil {
		p.errs.Add(err)
		return p.errs
	}

	p.lex.Reinit()
	p.prime()
	p.runPass()
	return p.errs
}

func (p *Parser) runPass() {
	for p.tok.Kind != token.EOF {
		for p.tok.Kind == token.NewLine {
			p.advance()
		}
		if p.tok.Kind == token.EOF {
			return
		}

		if err := p.checkLexError(); err != nil {
			p.errs.Add(err)
			return
		}

		var err *asmerr.Error
		switch p.tok.Kind {
		case token.SymbolAt:
			err = p.parseDirective()
		case token.InstructionJmp:
			err = p.parseJump()
		case token.Identifier:
			err = p.parseIdentifierStatement()
		default:
			err = p.parseExpressionStatement()
		}
		if err != nil {
			p.errs.Add(err)
			return
		}

		for p.tok.Kind == token.NewLine {
			p.advance()
		}
	}
}

// checkLexError surfaces the tokenizer's own recorded error the moment
// the parser encounters the InvalidSymbol token it produced.
func (p *Parser) checkLexError() *asmerr.Error {
	if p.tok.Kind != token.InvalidSymbol {
		return nil
	}
	errs := p.lex.Errors().Errors
	if len(errs) == 0 {
		return nil
	}
	return errs[len(errs)-1]
}

func (p *Parser) expect(kind token.Kind) (token.Token, *asmerr.Error) {
	if p.tok.Kind != kind {
		return token.Token{}, asmerr.At(asmerr.Parser, asmerr.UnexpectedToken, p.tok.Pos,
			"expected "+kind.String()+", got "+p.tok.Kind.String())
	}
	tok := p.tok
	p.advance()
	return tok, nil
}

func (p *Parser) unexpectedToken() *asmerr.Error {
	return asmerr.At(asmerr.Parser, asmerr.UnexpectedToken, p.tok.Pos, "unexpected token "+p.tok.Kind.String())
}

// wrapGen surfaces a generator failure as a parser-level GeneratorError.
// err's static type is *asmerr.Error rather than error, so the nil check
// here is safe; asmerr.Wrap itself can't distinguish a nil *asmerr.Error
// boxed in an error interface from a real nil.
func wrapGen(pos token.Position, err *asmerr.Error) *asmerr.Error {
	if err == nil {
		return nil
	}
	return asmerr.Wrap(pos, err)
}

// parseDirective handles `@name(args)`.
func (p *Parser) parseDirective() *asmerr.Error {
	atPos := p.tok.Pos
	p.advance() // consume '@'

	switch p.tok.Kind {
	case token.ReservedSetBitMode:
		p.advance()
		if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
			return err
		}
		mode, err := p.parseNumberLiteral()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.SymbolRightParanthesis); err != nil {
			return err
		}
		return wrapGen(atPos, p.gen.ProcessSetBitMode(int(mode), atPos))

	case token.ReservedSetOrigin:
		p.advance()
		if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
			return err
		}
		origin, err := p.parseNumberLiteral()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.SymbolRightParanthesis); err != nil {
			return err
		}
		return wrapGen(atPos, p.gen.ProcessSetOrigin(origin, atPos))

	case token.ReservedPadBytes:
		return p.parsePadBytes(atPos)

	case token.ReservedDoubleWords:
		return p.parseDoubleWords(atPos)

	case token.ReservedBytes, token.ReservedWords, token.ReservedQuadWords:
		return p.parseReservedStub()

	default:
		return asmerr.At(asmerr.Parser, asmerr.InvalidDirective, p.tok.Pos, "unknown directive "+p.tok.Lexeme)
	}
}

func (p *Parser) parsePadBytes(pos token.Position) *asmerr.Error {
	p.advance() // consume 'PadBytes'
	if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
		return err
	}
	count, err := p.parseConstExpr()
	if err != nil {
		return err
	}
	fill := uint64(0)
	if p.tok.Kind == token.SymbolComma {
		p.advance()
		fill, err = p.parseNumberLiteral()
		if err != nil {
			return err
		}
	}
	if _, err := p.expect(token.SymbolRightParanthesis); err != nil {
		return err
	}
	return wrapGen(pos, p.gen.ProcessPadBytes(int(count), byte(fill), pos))
}

func (p *Parser) parseDoubleWords(pos token.Position) *asmerr.Error {
	p.advance() // consume 'DoubleWords'
	if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
		return err
	}
	for p.tok.Kind != token.SymbolRightParanthesis {
		v, err := p.parseNumberLiteral()
		if err != nil {
			return err
		}
		p.gen.EmitDoubleWord(v)
		if p.tok.Kind == token.SymbolComma {
			p.advance()
			continue
		}
		break
	}
	_, err := p.expect(token.SymbolRightParanthesis)
	return err
}

// parseReservedStub consumes `(...)` for Bytes/Words/QuadWords, which
// currently accept nothing and emit nothing.
func (p *Parser) parseReservedStub() *asmerr.Error {
	p.advance() // consume the directive name
	if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
		return err
	}
	for p.tok.Kind != token.SymbolRightParanthesis && p.tok.Kind != token.EOF && p.tok.Kind != token.NewLine {
		p.advance()
	}
	_, err := p.expect(token.SymbolRightParanthesis)
	return err
}

func (p *Parser) parseNumberLiteral() (uint64, *asmerr.Error) {
	if p.tok.Kind != token.Number {
		return 0, p.unexpectedToken()
	}
	text := p.tok.Lexeme
	pos := p.tok.Pos
	p.advance()
	v, err := parseUint(text)
	if err != nil {
		return 0, asmerr.At(asmerr.Parser, asmerr.ParserInvalidNumber, pos, err.Error())
	}
	return v, nil
}

// parseConstExpr implements:
//
//	constExpr := ( constExpr ) | value (('+'|'-'|'*'|'/') constExpr)?
//	value     := number | '@' Current '(' ')' | '@' Origin '(' ')'
//
// with no operator precedence: each operator takes the whole rest of the
// expression as its right operand, so "2 + 3 * 2" is 2 + (3 * 2). Division
// floors.
func (p *Parser) parseConstExpr() (uint64, *asmerr.Error) {
	if p.tok.Kind == token.SymbolLeftParanthesis {
		p.advance()
		v, err := p.parseConstExpr()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(token.SymbolRightParanthesis); err != nil {
			return 0, err
		}
		return v, nil
	}

	v, err := p.parseConstValue()
	if err != nil {
		return 0, err
	}

	switch p.tok.Kind {
	case token.SymbolPlus, token.SymbolMinus, token.SymbolAsterisk, token.SymbolForwardSlash:
		op := p.tok.Kind
		p.advance()
		rhs, err := p.parseConstExpr()
		if err != nil {
			return 0, err
		}
		return applyConstOp(op, v, rhs), nil
	default:
		return v, nil
	}
}

func applyConstOp(op token.Kind, lhs, rhs uint64) uint64 {
	switch op {
	case token.SymbolPlus:
		return lhs + rhs
	case token.SymbolMinus:
		return lhs - rhs
	case token.SymbolAsterisk:
		return lhs * rhs
	case token.SymbolForwardSlash:
		if rhs == 0 {
			return 0
		}
		return lhs / rhs // unsigned division floors already
	default:
		return lhs
	}
}

func (p *Parser) parseConstValue() (uint64, *asmerr.Error) {
	switch p.tok.Kind {
	case token.Number:
		return p.parseNumberLiteral()
	case token.SymbolAt:
		p.advance()
		switch p.tok.Kind {
		case token.ReservedCurrent:
			p.advance()
			if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
				return 0, err
			}
			if _, err := p.expect(token.SymbolRightParanthesis); err != nil {
				return 0, err
			}
			return p.gen.CurrentAddress(), nil
		case token.ReservedStart:
			p.advance()
			if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
				return 0, err
			}
			if _, err := p.expect(token.SymbolRightParanthesis); err != nil {
				return 0, err
			}
			return p.gen.AddressOrigin(), nil
		default:
			return 0, p.unexpectedToken()
		}
	default:
		return 0, p.unexpectedToken()
	}
}

// parseIdentifierStatement handles a statement starting with an
// Identifier: either a label definition (`name:`) or the left-hand side
// of an expression.
func (p *Parser) parseIdentifierStatement() *asmerr.Error {
	nameTok := p.tok
	if p.peekTok.Kind == token.SymbolColon {
		p.advance() // consume the identifier
		p.advance() // consume ':'
		return wrapGen(nameTok.Pos, p.gen.ProcessLabel(nameTok.Lexeme, nameTok.Pos))
	}
	return p.parseExpressionStatement()
}

// parseExpressionStatement implements:
//
//	expr := lhs op rhs
//	lhs  := register-identifier | '*' number
//	op   := '=' | '+' '=' | '-' '='
//	rhs  := number | '*' (identifier|number) | register-identifier |
//	        '@' Current '(' ')' | '@' Origin '(' ')'
func (p *Parser) parseExpressionStatement() *asmerr.Error {
	lhs, err := p.parseLHS()
	if err != nil {
		return err
	}

	opPos := p.tok.Pos
	switch p.tok.Kind {
	case token.SymbolEquals:
		p.advance()
		rhs, err := p.parseRHS()
		if err != nil {
			return err
		}
		return wrapGen(opPos, p.gen.EmitAssignment(lhs, rhs, opPos))

	case token.SymbolPlus:
		p.advance()
		if _, err := p.expect(token.SymbolEquals); err != nil {
			return err
		}
		if _, err := p.parseRHS(); err != nil {
			return err
		}
		return asmerr.At(asmerr.Parser, asmerr.Unimplemented, opPos, "+= is not implemented")

	case token.SymbolMinus:
		p.advance()
		if _, err := p.expect(token.SymbolEquals); err != nil {
			return err
		}
		if _, err := p.parseRHS(); err != nil {
			return err
		}
		return asmerr.At(asmerr.Parser, asmerr.Unimplemented, opPos, "-= is not implemented")

	default:
		return p.unexpectedToken()
	}
}

func (p *Parser) parseLHS() (codegen.Operand, *asmerr.Error) {
	switch p.tok.Kind {
	case token.Identifier:
		name := p.tok.Lexeme
		pos := p.tok.Pos
		if !cpuinfo.SupportsRegister(name) {
			return codegen.Operand{}, asmerr.At(asmerr.Parser, asmerr.UnsupportedRegister, pos, "unknown register "+name)
		}
		tok := p.tok
		p.advance()
		return codegen.Operand{Access: codegen.Direct, Value: codegen.Identifier(name), Tok: &tok}, nil

	case token.SymbolAsterisk:
		p.advance()
		if p.tok.Kind != token.Number {
			return codegen.Operand{}, p.unexpectedToken()
		}
		tok := p.tok
		p.advance()
		return codegen.Operand{Access: codegen.Indirect, Value: codegen.Constant(tok.Lexeme), Tok: &tok}, nil

	default:
		return codegen.Operand{}, p.unexpectedToken()
	}
}

func (p *Parser) parseRHS() (codegen.Value, *asmerr.Error) {
	switch p.tok.Kind {
	case token.Number:
		v := codegen.Constant(p.tok.Lexeme)
		p.advance()
		return v, nil

	case token.Identifier:
		name := p.tok.Lexeme
		pos := p.tok.Pos
		if !cpuinfo.SupportsRegister(name) {
			return codegen.Value{}, asmerr.At(asmerr.Parser, asmerr.UnsupportedRegister, pos, "unknown register "+name)
		}
		p.advance()
		return codegen.Identifier(name), nil

	case token.SymbolAsterisk:
		p.advance()
		switch p.tok.Kind {
		case token.Identifier:
			name := p.tok.Lexeme
			p.advance()
			return codegen.Identifier(name), nil
		case token.Number:
			text := p.tok.Lexeme
			p.advance()
			return codegen.Constant(text), nil
		default:
			return codegen.Value{}, p.unexpectedToken()
		}

	case token.SymbolAt:
		p.advance()
		switch p.tok.Kind {
		case token.ReservedCurrent:
			p.advance()
			if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
				return codegen.Value{}, err
			}
			if _, err := p.expect(token.SymbolRightParanthesis); err != nil {
				return codegen.Value{}, err
			}
			return codegen.Constant(strconv.FormatUint(p.gen.CurrentAddress(), 10)), nil
		case token.ReservedStart:
			p.advance()
			if _, err := p.expect(token.SymbolLeftParanthesis); err != nil {
				return codegen.Value{}, err
			}
			if _, err := p.expect(token.SymbolRightParanthesis); err != nil {
				return codegen.Value{}, err
			}
			return codegen.Constant(strconv.FormatUint(p.gen.AddressOrigin(), 10)), nil
		default:
			return codegen.Value{}, p.unexpectedToken()
		}

	default:
		return codegen.Value{}, p.unexpectedToken()
	}
}

// parseJump handles `jmp <operand>`.
func (p *Parser) parseJump() *asmerr.Error {
	pos := p.tok.Pos
	p.advance() // consume 'jmp'

	switch p.tok.Kind {
	case token.Number:
		v := codegen.Constant(p.tok.Lexeme)
		p.advance()
		return wrapGen(pos, p.gen.EmitJump(v, pos))
	case token.Identifier:
		v := codegen.Identifier(p.tok.Lexeme)
		p.advance()
		return wrapGen(pos, p.gen.EmitJump(v, pos))
	default:
		return asmerr.At(asmerr.Parser, asmerr.UnexpectedToken, p.tok.Pos, "expected a jump target")
	}
}

func parseUint(text string) (uint64, error) {
	switch {
	case len(text) > 2 && (text[0:2] == "0x" || text[0:2] == "0X"):
		return strconv.ParseUint(text[2:], 16, 64)
	case len(text) > 2 && (text[0:2] == "0b" || text[0:2] == "0B"):
		return strconv.ParseUint(text[2:], 2, 64)
	default:
		return strconv.ParseUint(text, 10, 64)
	}
}
