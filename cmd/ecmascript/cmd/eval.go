package cmd

import (
	"fmt"
	"os"

	"github.com/go-ecmascript/ecmascript/internal/errors"
	"github.com/go-ecmascript/ecmascript/pkg/ecmascript"
	"github.com/spf13/cobra"
)

var (
	evalExpr   string
	evalModule bool
	evalStrict bool
	evalQuiet  bool
)

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate an ECMAScript file or expression",
	Long: `Evaluate an ECMAScript program from a file, inline expression, or stdin,
then drain the microtask queue and print the completion value.

Examples:
  # Run a script file
  ecmascript eval script.js

  # Evaluate an inline expression
  ecmascript eval -e "2 + 2"

  # Evaluate as a module (strict, top-level await allowed)
  ecmascript eval --module script.mjs

  # Force strict mode without a "use strict" prologue
  ecmascript eval --strict -e "foo = 1"`,
	Args: cobra.MaximumNArgs(1),
	RunE: evalScript,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	evalCmd.Flags().BoolVar(&evalModule, "module", false, "evaluate as a module instead of a script")
	evalCmd.Flags().BoolVar(&evalStrict, "strict", false, "force strict mode")
	evalCmd.Flags().BoolVarP(&evalQuiet, "quiet", "q", false, "suppress printing the completion value")
}

func evalScript(_ *cobra.Command, args []string) error {
	source, filename, err := readInput(evalExpr, args)
	if err != nil {
		return err
	}

	eng := ecmascript.New(ecmascript.WithStrict(evalStrict))
	result, err := eng.Eval(source, filename, evalModule)
	if err != nil {
		if list, ok := err.(errors.List); ok {
			for _, e := range list {
				fmt.Fprintln(os.Stderr, e.Format(true))
			}
			return fmt.Errorf("%d error(s)", len(list))
		}
		fmt.Fprintf(os.Stderr, "Uncaught %v\n", err)
		return err
	}

	if !evalQuiet && !result.IsUndefined() {
		fmt.Println(result.String())
	}
	return nil
}
