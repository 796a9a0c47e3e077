// Package config holds the small set of process-wide constants shared by
// the CLI, both evaluators, and their tests: version string, recognized
// source file extensions, sysexits-style exit codes, and GC tuning
// defaults.
package config

// Version is the current loxvm version.
var Version = "0.1.0"

// SourceFileExt is the canonical Lox source extension.
const SourceFileExt = ".lox"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".lox"}

// HasSourceExt returns true if path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	ext := SourceFileExt
	return len(path) >= len(ext) && path[len(path)-len(ext):] == ext
}

// Exit codes, following the classic sysexits convention (spec §6).
const (
	ExitSuccess    = 0
	ExitUsageError = 64
	ExitCompileErr = 65
	ExitRuntimeErr = 70
	ExitIOErr      = 74
)

// GC tuning defaults (spec §4.7).
const (
	// InitialGCThreshold is the bytes-allocated level that triggers the
	// first collection.
	InitialGCThreshold = 1 << 20 // 1 MiB

	// GCHeapGrowFactor scales nextGC after each collection.
	GCHeapGrowFactor = 2

	// MaxLocals bounds a single function's local-variable array (spec §4.4).
	MaxLocals = 256

	// MaxCallFrames bounds VM call-frame recursion depth (spec §4.6).
	MaxCallFrames = 64

	// FramesStackSlots is the per-frame value-stack budget referenced
	// alongside MaxCallFrames ("64 frames x 256 slots" spec §4.6).
	FramesStackSlots = 256
)
