package cmd

import (
	"fmt"
	"os"

	"github.com/go-ecmascript/ecmascript/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	lexExpr    string
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an ECMAScript file or expression",
	Long: `Tokenize (lex) an ECMAScript program and print the resulting tokens.

This command is useful for debugging the lexer and understanding how
source code is tokenized, including regex-vs-division disambiguation
and template literal scanning.

Examples:
  # Tokenize a script file
  ecmascript lex script.js

  # Tokenize an inline expression
  ecmascript lex -e "let x = 42;"

  # Show token types and positions
  ecmascript lex --show-type --show-pos script.js

  # Show only errors (illegal tokens)
  ecmascript lex --only-errors script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal/error tokens")
}

func lexScript(_ *cobra.Command, args []string) error {
	source, _, err := readInput(lexExpr, args)
	if err != nil {
		return err
	}

	l := lexer.New(source)
	count := 0
	for {
		tok := l.Next()
		if tok.Type == lexer.EOF {
			break
		}
		if onlyErrors && tok.Type != lexer.ILLEGAL {
			continue
		}
		count++

		switch {
		case showType && showPos:
			fmt.Printf("%-12s %-20q %s\n", tok.Type, tok.Literal, tok.Pos)
		case showType:
			fmt.Printf("%-12s %q\n", tok.Type, tok.Literal)
		case showPos:
			fmt.Printf("%-20q %s\n", tok.Literal, tok.Pos)
		default:
			fmt.Printf("%q\n", tok.Literal)
		}
	}

	if errs := l.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d lexical error(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s at %s\n", e.Message, e.Pos)
		}
		return fmt.Errorf("lexing failed")
	}

	if !onlyErrors {
		fmt.Printf("\n%d token(s)\n", count)
	}
	return nil
}
