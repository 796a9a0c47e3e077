package vm

import "github.com/loxlang/loxvm/internal/token"

// FunctionType tags what kind of body a funcCompiler is compiling, driving
// the return-statement checks spec §4.4/§4.5 require (return from top-level
// script is an error; returning a value from an initializer is an error;
// a bare return from an initializer yields the receiver instead of nil).
type FunctionType int

const (
	typeFunction FunctionType = iota
	typeInitializer
	typeMethod
	typeScript
)

// local tracks one slot of a funcCompiler's flat locals array (spec §4.4):
// the declaring token, the scope depth it was declared at (-1 while
// between declare and define, so a self-read in its own initializer can be
// caught), and whether any nested closure captured it as an upvalue.
type local struct {
	name       token.Token
	depth      int
	isCaptured bool
}

// upvalueRef is one entry of a funcCompiler's upvalue list: either a direct
// reference to a local slot in the immediately enclosing function, or an
// indirect reference to one of that function's own upvalues.
type upvalueRef struct {
	index   byte
	isLocal bool
}

// classCompilerState tracks lexical class nesting so `this`/`super` checks
// and INHERIT's implicit super-scope can be resolved without re-walking the
// AST (spec §4.4: "a current-class-context (none / class / subclass)").
type classCompilerState struct {
	enclosing     *classCompilerState
	hasSuperclass bool
}

// funcCompiler holds one function body's compilation state: its growing
// Function object, the locals currently in scope, the upvalues it has had
// to capture so far, and a pointer back to the compiler for the lexically
// enclosing function (nil at the top-level script).
type funcCompiler struct {
	enclosing *funcCompiler

	function *ObjFunction
	fnType   FunctionType

	locals     []local
	scopeDepth int
	upvalues   []upvalueRef
}

func newFuncCompiler(enclosing *funcCompiler, fnType FunctionType, name string) *funcCompiler {
	fc := &funcCompiler{
		enclosing: enclosing,
		fnType:    fnType,
		function: &ObjFunction{
			Chunk: NewChunk(),
		},
	}
	if name != "" {
		fc.function.Name = &ObjString{Chars: name, Hash: hashString(name)}
	}
	// Slot 0 is reserved for the receiver in methods/initializers and for
	// the callee closure itself otherwise (spec §4.6's "local slot 0 holds
	// the callee or `this` in methods").
	slotName := ""
	if fnType == typeMethod || fnType == typeInitializer {
		slotName = "this"
	}
	fc.locals = append(fc.locals, local{name: token.Token{Lexeme: slotName}, depth: 0})
	return fc
}

func (fc *funcCompiler) chunk() *Chunk { return fc.function.Chunk }

func (fc *funcCompiler) beginScope() { fc.scopeDepth++ }

// endScope pops every local declared at or above the scope being left,
// returning the popped locals so the caller can emit one POP or
// CLOSE_UPVALUE per local (the caller decides which — see the endScope
// wrapper in compiler_statements.go).
func (fc *funcCompiler) endScope() []local {
	fc.scopeDepth--
	cut := len(fc.locals)
	for cut > 0 && fc.locals[cut-1].depth > fc.scopeDepth {
		cut--
	}
	popped := append([]local(nil), fc.locals[cut:]...)
	fc.locals = fc.locals[:cut]
	return popped
}

// resolveLocal finds name among this function's locals, innermost first.
// Returns (-1, false) if not found, else (slot, true). A local still
// mid-declaration has depth == -1; the caller checks that to report a
// self-read error.
func (fc *funcCompiler) resolveLocal(name string) (int, bool) {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name.Lexeme == name {
			return i, true
		}
	}
	return -1, false
}

func (fc *funcCompiler) addUpvalue(index byte, isLocal bool) int {
	for i, u := range fc.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	fc.function.UpvalueCount = len(fc.upvalues)
	return len(fc.upvalues) - 1
}

// resolveUpvalue implements spec §4.4's three-step resolution, walking the
// enclosing funcCompiler chain.
func resolveUpvalue(fc *funcCompiler, name string) (int, bool) {
	if fc.enclosing == nil {
		return -1, false
	}
	if idx, ok := fc.enclosing.resolveLocal(name); ok {
		fc.enclosing.locals[idx].isCaptured = true
		return fc.addUpvalue(byte(idx), true), true
	}
	if idx, ok := resolveUpvalue(fc.enclosing, name); ok {
		return fc.addUpvalue(byte(idx), false), true
	}
	return -1, false
}
