package vm

import "github.com/loxlang/loxvm/internal/token"

// precedence is spec §4.4's precedence-climbing ladder, low to high.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LEFT_PAREN:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		token.DOT:           {infix: (*Compiler).dot, precedence: precCall},
		token.MINUS:         {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		token.PLUS:          {infix: (*Compiler).binary, precedence: precTerm},
		token.SLASH:         {infix: (*Compiler).binary, precedence: precFactor},
		token.STAR:          {infix: (*Compiler).binary, precedence: precFactor},
		token.BANG:          {prefix: (*Compiler).unary},
		token.BANG_EQUAL:    {infix: (*Compiler).binary, precedence: precEquality},
		token.EQUAL_EQUAL:   {infix: (*Compiler).binary, precedence: precEquality},
		token.GREATER:       {infix: (*Compiler).binary, precedence: precComparison},
		token.GREATER_EQUAL: {infix: (*Compiler).binary, precedence: precComparison},
		token.LESS:          {infix: (*Compiler).binary, precedence: precComparison},
		token.LESS_EQUAL:    {infix: (*Compiler).binary, precedence: precComparison},
		token.IDENTIFIER:    {prefix: (*Compiler).variable},
		token.STRING:        {prefix: (*Compiler).string_},
		token.NUMBER:        {prefix: (*Compiler).number},
		token.AND:           {infix: (*Compiler).and_, precedence: precAnd},
		token.OR:            {infix: (*Compiler).or_, precedence: precOr},
		token.FALSE:         {prefix: (*Compiler).literal},
		token.TRUE:          {prefix: (*Compiler).literal},
		token.NIL:           {prefix: (*Compiler).literal},
		token.THIS:          {prefix: (*Compiler).this_},
		token.SUPER:         {prefix: (*Compiler).super_},
	}
}

func getRule(t token.Type) parseRule { return rules[t] }

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(canAssign bool) {
	c.emitConstant(c.previous.Literal.(float64))
}

func (c *Compiler) string_(canAssign bool) {
	c.emitConstant(c.strings.intern(c.previous.Literal.(string)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case token.FALSE:
		c.emitOp(OP_FALSE)
	case token.TRUE:
		c.emitOp(OP_TRUE)
	case token.NIL:
		c.emitOp(OP_NIL)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case token.MINUS:
		c.emitOp(OP_NEGATE)
	case token.BANG:
		c.emitOp(OP_NOT)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BANG_EQUAL:
		c.emitOp(OP_EQUAL)
		c.emitOp(OP_NOT)
	case token.EQUAL_EQUAL:
		c.emitOp(OP_EQUAL)
	case token.GREATER:
		c.emitOp(OP_GREATER)
	case token.GREATER_EQUAL:
		c.emitOp(OP_LESS)
		c.emitOp(OP_NOT)
	case token.LESS:
		c.emitOp(OP_LESS)
	case token.LESS_EQUAL:
		c.emitOp(OP_GREATER)
		c.emitOp(OP_NOT)
	case token.PLUS:
		c.emitOp(OP_ADD)
	case token.MINUS:
		c.emitOp(OP_SUBTRACT)
	case token.STAR:
		c.emitOp(OP_MULTIPLY)
	case token.SLASH:
		c.emitOp(OP_DIVIDE)
	}
}

// and_ implements spec §4.4's short-circuit AND: after the left operand,
// jump past the right operand if it's already falsey.
func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or_ implements spec §4.4's short-circuit OR.
func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(OP_JUMP_IF_FALSE)
	endJump := c.emitJump(OP_JUMP)

	c.patchJump(elseJump)
	c.emitOp(OP_POP)

	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOpByte(OP_CALL, argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.expression()
			if count >= 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return byte(count)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENTIFIER, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emitOpByte(OP_SET_PROPERTY, name)
	case c.match(token.LEFT_PAREN):
		argCount := c.argumentList()
		c.emitOpByte(OP_INVOKE, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(OP_GET_PROPERTY, name)
	}
}

func (c *Compiler) this_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENTIFIER, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(token.Token{Type: token.IDENTIFIER, Lexeme: "this"}, false)
	if c.match(token.LEFT_PAREN) {
		argCount := c.argumentList()
		c.namedVariable(token.Token{Type: token.IDENTIFIER, Lexeme: "super"}, false)
		c.emitOpByte(OP_SUPER_INVOKE, name)
		c.emitByte(argCount)
	} else {
		c.namedVariable(token.Token{Type: token.IDENTIFIER, Lexeme: "super"}, false)
		c.emitOpByte(OP_GET_SUPER, name)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable resolves name as local, upvalue, or global (in that order)
// and emits the matching GET/SET pair, handling a trailing `= value` when
// canAssign permits it (spec §4.4's assignment-target handling).
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp Opcode
	var arg int

	if idx, ok := c.fc.resolveLocal(name.Lexeme); ok {
		if c.fc.locals[idx].depth == -1 {
			c.error("Can't read local variable in its own initializer.")
		}
		getOp, setOp, arg = OP_GET_LOCAL, OP_SET_LOCAL, idx
	} else if idx, ok := resolveUpvalue(c.fc, name.Lexeme); ok {
		getOp, setOp, arg = OP_GET_UPVALUE, OP_SET_UPVALUE, idx
	} else {
		getOp, setOp, arg = OP_GET_GLOBAL, OP_SET_GLOBAL, int(c.identifierConstant(name))
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}
