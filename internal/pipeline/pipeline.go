// Package pipeline provides a stage-list abstraction for the fixed stage
// lists the evaluators follow: scan -> parse -> resolve -> interpret for the
// tree-walker, scan -> compile -> run for the bytecode VM. Neither backend
// runs through it; pkg/cli calls each backend's stages directly.
package pipeline

// Context threads source text and accumulated diagnostics through a
// Pipeline. Backend-specific stages stash their own result (an AST, a
// Chunk, ...) via Set/Get rather than the Context knowing their types.
type Context struct {
	Source   string
	FilePath string

	// HadError is set once any stage reports a fatal problem; later stages
	// may still run (so e.g. a resolver can report its own errors on top of
	// parse errors) but a driver checking HadError before execution is how
	// "the pipeline refuses to execute" (spec §7) is enforced.
	HadError bool

	values map[string]interface{}
}

// NewContext creates a Context over source read from filePath (used only
// for error messages; filePath may be "" for REPL input).
func NewContext(source, filePath string) *Context {
	return &Context{Source: source, FilePath: filePath, values: make(map[string]interface{})}
}

// Set stashes a named stage result (e.g. "tokens", "ast", "chunk").
func (c *Context) Set(key string, value interface{}) {
	c.values[key] = value
}

// Get retrieves a named stage result set by an earlier stage.
func (c *Context) Get(key string) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Processor is a single pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx *Context) *Context

func (f ProcessorFunc) Process(ctx *Context) *Context { return f(ctx) }

// Pipeline runs a fixed sequence of stages over a Context.
type Pipeline struct {
	stages []Processor
}

// New builds a Pipeline from an ordered list of stages.
func New(stages ...Processor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes every stage in order, threading the Context through each.
// Stages continue to run even after HadError is set so later stages (e.g. a
// resolver) can still surface their own diagnostics on top of earlier ones;
// callers decide whether to act on the result by checking ctx.HadError.
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, stage := range p.stages {
		ctx = stage.Process(ctx)
	}
	return ctx
}
