package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ecmascript",
	Short: "ECMAScript engine and bytecode compiler",
	Long: `ecmascript is a self-contained ECMAScript (ES2020+) execution engine.

A source string goes in at one end and a fully evaluated value comes
out the other: lexer, recursive-descent parser, bytecode compiler, and
a stack-based virtual machine with promises, generators, async/await,
classes with private members, and destructuring.

The engine embeds as a library (pkg/ecmascript); this binary exposes
the pipeline stages for running and debugging scripts.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

// readInput resolves the common input convention shared by every
// subcommand: -e takes inline source, a single positional argument
// names a file, and with neither the source is read from stdin.
func readInput(inline string, args []string) (source, filename string, err error) {
	switch {
	case inline != "":
		return inline, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
}
