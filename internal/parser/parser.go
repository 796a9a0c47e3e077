// Package parser implements the tree-walker's recursive-descent parser: it
// turns a token stream into the list of ast.Stmt the resolver and interpreter
// consume. The bytecode backend does not use this package — its compiler
// parses directly into bytecode with its own single-pass Pratt parser (see
// internal/vm/compiler.go) — but both parsers share the same grammar and
// the same diagnostics conventions.
package parser

import (
	"github.com/loxlang/loxvm/internal/ast"
	"github.com/loxlang/loxvm/internal/diagnostics"
	"github.com/loxlang/loxvm/internal/lexer"
	"github.com/loxlang/loxvm/internal/token"
)

// Parser holds the two-token window (current, previous) typical
// of a recursive-descent Lox parser, plus the shared error reporter.
type Parser struct {
	lex      *lexer.Lexer
	current  token.Token
	previous token.Token
	reporter diagnostics.Reporter
}

// New creates a Parser over source.
func New(source string) *Parser {
	p := &Parser{lex: lexer.New(source)}
	p.advance()
	return p
}

// Errors returns every compile error collected while parsing.
func (p *Parser) Errors() []diagnostics.CompileError { return p.reporter.Errors }

// HadError reports whether any statement failed to parse.
func (p *Parser) HadError() bool { return p.reporter.HadError }

// ParseProgram parses a full program (REPL input or a whole file) into a
// list of top-level statements, continuing past errors via panic-mode
// synchronization (spec §4.4/§7) so one malformed statement doesn't hide
// the rest.
func (p *Parser) ParseProgram() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.EOF) {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func (p *Parser) advance() token.Token {
	p.previous = p.current
	for {
		p.current = p.lex.NextToken()
		if p.current.Type != token.ERROR {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
	return p.previous
}

func (p *Parser) check(t token.Type) bool {
	return p.current.Type == t
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past current if it has type t, else reports message at
// the current token.
func (p *Parser) consume(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	return p.current
}

func (p *Parser) errorAtCurrent(message string) {
	p.reporter.Report(diagnostics.NewError(p.current, message))
}

func (p *Parser) error(message string) {
	p.reporter.Report(diagnostics.NewError(p.previous, message))
}

// synchronize discards tokens until it reaches a likely statement boundary,
// per spec §4.4/§7: a semicolon terminator or a statement-starting keyword.
func (p *Parser) synchronize() {
	p.reporter.ClearPanic()
	for !p.check(token.EOF) {
		if p.previous.Type == token.SEMICOLON {
			return
		}
		switch p.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
