// Command lox is the Lox language entry point: a REPL, file runner, and
// bytecode disassembler over the tree-walker and VM backends (spec §6).
package main

import (
	"os"

	"github.com/loxlang/loxvm/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
