package vm

import (
	"github.com/loxlang/loxvm/internal/diagnostics"
	"github.com/loxlang/loxvm/internal/lexer"
	"github.com/loxlang/loxvm/internal/token"
)

// Compiler is the single-pass Pratt parser that compiles source directly to
// bytecode (spec §4.4), sharing the scanner with the tree-walker's parser
// but producing Chunks instead of an AST.
type Compiler struct {
	lex      *lexer.Lexer
	current  token.Token
	previous token.Token

	reporter  diagnostics.Reporter
	panicking bool

	fc    *funcCompiler
	class *classCompilerState

	strings *internTable
	owner   *VM // rooted funcCompiler tracking; nil when compiling without a VM
}

// setFC reassigns the active funcCompiler, keeping owner.compilerRoot (the
// GC's mark-roots source during compilation) pointed at whichever
// funcCompiler is actually innermost right now — a stale compilerRoot would
// leave the in-progress nested function unrooted the moment a string
// interned deeper in its body triggers a collection.
func (c *Compiler) setFC(fc *funcCompiler) {
	entering := fc != nil && fc.enclosing == c.fc
	c.fc = fc
	if c.owner != nil {
		c.owner.compilerRoot = fc
		// A newly entered function joins the heap list like every other
		// object, so sweep clears its mark bit and later cycles trace its
		// constants again.
		if entering {
			c.owner.track(fc.function)
		}
	}
}

// Compile compiles source into the top-level script function. On a compile
// error it returns the reporter's accumulated errors and a nil function.
//
// owner, when non-nil, is rooted for the duration of compilation so a GC
// collection triggered by string interning mid-compile (spec §4.7's
// allocation-time trigger) can still see the in-progress Function and its
// constants. With owner nil nothing is rooted; that is only safe when the
// intern table has no VM attached, so no allocation can trigger a collection.
func Compile(source string, strings *internTable, owner *VM) (*ObjFunction, []diagnostics.CompileError) {
	c := &Compiler{
		lex:     lexer.New(source),
		strings: strings,
		owner:   owner,
	}
	c.setFC(newFuncCompiler(nil, typeScript, ""))

	if owner != nil {
		defer func() { owner.compilerRoot = nil }()
	}

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn, _ := c.endCompiler()

	if c.reporter.HadError {
		return nil, c.reporter.Errors
	}
	return fn, nil
}

// --- token plumbing ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.NextToken()
		if c.current.Type != token.ERROR {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t token.Type) bool { return c.current.Type == t }

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.reporter.InPanic() {
		return
	}
	c.reporter.Report(diagnostics.NewError(tok, message))
}

// synchronize skips tokens until a likely statement boundary, matching the
// resolver/parser's own panic-mode recovery (spec §4.4's "Diagnostics").
func (c *Compiler) synchronize() {
	c.reporter.ClearPanic()
	for c.current.Type != token.EOF {
		if c.previous.Type == token.SEMICOLON {
			return
		}
		switch c.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- emission ---

func (c *Compiler) emitByte(b byte)      { c.fc.chunk().Write(b, c.previous.Line) }
func (c *Compiler) emitOp(op Opcode)     { c.fc.chunk().WriteOp(op, c.previous.Line) }
func (c *Compiler) emitBytes(a, b byte)  { c.emitByte(a); c.emitByte(b) }
func (c *Compiler) emitOpByte(op Opcode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitReturn() {
	if c.fc.fnType == typeInitializer {
		// Bare `return;` inside init yields the receiver (spec §4.4, §4.6).
		c.emitOpByte(OP_GET_LOCAL, 0)
	} else {
		c.emitOp(OP_NIL)
	}
	c.emitOp(OP_RETURN)
}

func (c *Compiler) makeConstant(v Value) byte {
	idx := c.fc.chunk().AddConstant(v)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v Value) {
	c.emitOpByte(OP_CONSTANT, c.makeConstant(v))
}

// emitJump emits a jump opcode with a two-byte placeholder operand and
// returns the offset of the first placeholder byte, to be patched later.
func (c *Compiler) emitJump(op Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.fc.chunk().Len() - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := c.fc.chunk().Len() - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.fc.chunk().Code[offset] = byte(jump>>8) & 0xff
	c.fc.chunk().Code[offset+1] = byte(jump) & 0xff
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(OP_LOOP)
	offset := c.fc.chunk().Len() - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset>>8) & 0xff)
	c.emitByte(byte(offset) & 0xff)
}

// identifierConstant interns name and adds it to the constant pool,
// returning its index — used for every name-idx operand (globals,
// properties, method names).
func (c *Compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(c.strings.intern(name.Lexeme))
}

// endCompiler finishes the current function, restoring the enclosing
// funcCompiler, and returns the completed Function plus the upvalue list
// the finished funcCompiler accumulated (CLOSURE's operands, spec §4.6).
func (c *Compiler) endCompiler() (*ObjFunction, []upvalueRef) {
	c.emitReturn()
	fn := c.fc.function
	upvalues := c.fc.upvalues
	c.setFC(c.fc.enclosing)
	return fn, upvalues
}
