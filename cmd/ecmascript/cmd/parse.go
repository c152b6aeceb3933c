package cmd

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/parser"
	"github.com/spf13/cobra"
)

var (
	parseExpr   string
	parseModule bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse ECMAScript source and display the AST",
	Long: `Parse ECMAScript source code and display the abstract syntax tree.

If no file is provided, reads from stdin.
Use -e to parse inline source from the command line.

Examples:
  # Parse a script file
  ecmascript parse script.js

  # Parse an inline expression
  ecmascript parse -e "const [a, ...rest] = xs;"

  # Parse as a module (import/export legal)
  ecmascript parse --module lib.mjs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseExpr, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseModule, "module", false, "parse as a module instead of a script")
}

func runParse(_ *cobra.Command, args []string) error {
	source, filename, err := readInput(parseExpr, args)
	if err != nil {
		return err
	}

	atoms := atom.New()
	parse := parser.ParseScript
	if parseModule {
		parse = parser.ParseModule
	}
	prog, errList := parse(source, filename, atoms)
	if len(errList) > 0 {
		for _, e := range errList {
			fmt.Fprintln(os.Stderr, e.Format(true))
		}
		return fmt.Errorf("%d parse error(s)", len(errList))
	}

	var sb strings.Builder
	dumpNode(&sb, reflect.ValueOf(prog), 0)
	fmt.Print(sb.String())
	return nil
}

// dumpNode renders an AST node tree as an indented outline: one line
// per node with its struct type name, scalar fields inline, child
// nodes and slices recursed with deeper indentation.
func dumpNode(sb *strings.Builder, v reflect.Value, depth int) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteString(v.Type().Name())

	type child struct {
		name string
		val  reflect.Value
	}
	var children []child
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f, fv := t.Field(i), v.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		switch fv.Kind() {
		case reflect.String:
			fmt.Fprintf(sb, " %s=%q", f.Name, fv.String())
		case reflect.Bool:
			if fv.Bool() {
				fmt.Fprintf(sb, " %s", f.Name)
			}
		case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint32, reflect.Float64:
			fmt.Fprintf(sb, " %s=%v", f.Name, fv.Interface())
		case reflect.Slice, reflect.Pointer, reflect.Interface:
			children = append(children, child{f.Name, fv})
		}
	}
	sb.WriteString("\n")

	for _, c := range children {
		if c.val.Kind() == reflect.Slice {
			for i := 0; i < c.val.Len(); i++ {
				dumpNode(sb, c.val.Index(i), depth+1)
			}
			continue
		}
		dumpNode(sb, c.val, depth+1)
	}
}
