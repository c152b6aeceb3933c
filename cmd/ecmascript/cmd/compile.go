package cmd

import (
	"fmt"
	"os"

	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/parser"
	"github.com/spf13/cobra"
)

var (
	compileExpr   string
	compileModule bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile ECMAScript source and show the bytecode",
	Long: `Compile an ECMAScript program to bytecode and print the disassembled
instruction listing for the top-level chunk, every nested function, and
every class constructor and method.

Bytecode is an in-memory contract between the compiler and the VM; it
is not persisted to disk. This command exists to inspect what the
compiler emits for a given program.

Examples:
  # Disassemble a script
  ecmascript compile script.js

  # Disassemble an inline expression
  ecmascript compile -e "for (const x of xs) f(x);"`,
	Args: cobra.MaximumNArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileExpr, "eval", "e", "", "compile inline code instead of reading from file")
	compileCmd.Flags().BoolVar(&compileModule, "module", false, "compile as a module instead of a script")
}

func compileScript(_ *cobra.Command, args []string) error {
	source, filename, err := readInput(compileExpr, args)
	if err != nil {
		return err
	}

	atoms := atom.New()
	parse := parser.ParseScript
	if compileModule {
		parse = parser.ParseModule
	}
	prog, errList := parse(source, filename, atoms)
	if len(errList) > 0 {
		for _, e := range errList {
			fmt.Fprintln(os.Stderr, e.Format(true))
		}
		return fmt.Errorf("%d parse error(s)", len(errList))
	}

	chunk, err := bytecode.Compile(prog, atoms)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("compilation failed")
	}

	fmt.Print(bytecode.Disassemble(chunk))
	return nil
}
