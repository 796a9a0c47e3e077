package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loxlang/loxvm/internal/config"
)

func runCLI(t *testing.T, args []string, stdin string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeScript(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestRunFileVMBackendPrintsOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "prog.lox", `print 1 + 2;`)

	out, errOut, code := runCLI(t, []string{path}, "")
	if code != config.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", code, errOut)
	}
	if out != "3\n" {
		t.Fatalf("got %q, want %q", out, "3\n")
	}
}

func TestRunFileTreeBackendPrintsOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "prog.lox", `print "a" + "b";`)

	out, errOut, code := runCLI(t, []string{"-tree", path}, "")
	if code != config.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", code, errOut)
	}
	if out != "ab\n" {
		t.Fatalf("got %q, want %q", out, "ab\n")
	}
}

func TestRunFileCompileErrorExitsSixtyFive(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.lox", `print ;`)

	_, errOut, code := runCLI(t, []string{path}, "")
	if code != config.ExitCompileErr {
		t.Fatalf("exit code = %d, want %d", code, config.ExitCompileErr)
	}
	if errOut == "" {
		t.Fatalf("expected a diagnostic on stderr")
	}
}

func TestRunFileRuntimeErrorExitsSeventy(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.lox", `print nonexistent;`)

	_, errOut, code := runCLI(t, []string{path}, "")
	if code != config.ExitRuntimeErr {
		t.Fatalf("exit code = %d, want %d", code, config.ExitRuntimeErr)
	}
	if errOut == "" {
		t.Fatalf("expected a diagnostic on stderr")
	}
}

func TestRunMissingFileExitsSeventyFour(t *testing.T) {
	_, _, code := runCLI(t, []string{"/nonexistent/path/script.lox"}, "")
	if code != config.ExitIOErr {
		t.Fatalf("exit code = %d, want %d", code, config.ExitIOErr)
	}
}

func TestRunTooManyArgsExitsSixtyFour(t *testing.T) {
	_, errOut, code := runCLI(t, []string{"a.lox", "b.lox"}, "")
	if code != config.ExitUsageError {
		t.Fatalf("exit code = %d, want %d", code, config.ExitUsageError)
	}
	if !strings.Contains(errOut, "Usage") {
		t.Fatalf("expected usage message, got %q", errOut)
	}
}

func TestREPLPersistsGlobalsBetweenLines(t *testing.T) {
	out, errOut, code := runCLI(t, nil, "var x = 1;\nprint x + 1;\n")
	if code != config.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", code, errOut)
	}
	if out != "2\n" {
		t.Fatalf("got %q, want %q", out, "2\n")
	}
}

func TestREPLNonInteractiveStdinSuppressesPrompt(t *testing.T) {
	out, _, _ := runCLI(t, nil, "print 1;\n")
	if strings.Contains(out, ">") {
		t.Fatalf("expected no prompt on non-tty stdin, got %q", out)
	}
}

func TestDisasmCommandPrintsBytecodeWithoutRunning(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "prog.lox", `print 1 + 2;`)

	out, errOut, code := runCLI(t, []string{"disasm", path}, "")
	if code != config.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", code, errOut)
	}
	if !strings.Contains(out, "OP_CONSTANT") || !strings.Contains(out, "OP_PRINT") {
		t.Fatalf("expected disassembly output, got %q", out)
	}
	if strings.Contains(out, "3\n") {
		t.Fatalf("disasm must not execute the script: %q", out)
	}
}

func TestLoxrcConfigEnablesStressGC(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(cwd)

	rcPath := filepath.Join(dir, loxrcFileName)
	if err := os.WriteFile(rcPath, []byte("gcStressTest: true\n"), 0644); err != nil {
		t.Fatalf("writing .loxrc.yaml: %v", err)
	}

	path := writeScript(t, dir, "prog.lox", `
	class Node { init(v) { this.v = v; } }
	var n = Node(1);
	print n.v;
	`)

	out, errOut, code := runCLI(t, []string{path}, "")
	if code != config.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", code, errOut)
	}
	if out != "1\n" {
		t.Fatalf("got %q, want %q", out, "1\n")
	}
}
