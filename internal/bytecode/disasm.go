package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a chunk, the functions in its Functions pool, and
// the constructor and method bodies of the classes in its Classes pool
// (recursively) as a flat, human-readable instruction listing, the way
// the CLI's `lex` and `parse` debug subcommands dump intermediate
// stages rather than only the raw execution result. Class field
// initializers, static blocks, and computed-key thunks are not listed.
func Disassemble(chunk *Chunk) string {
	var sb strings.Builder
	disassembleChunk(&sb, chunk, "")
	return sb.String()
}

func disassembleChunk(sb *strings.Builder, chunk *Chunk, indent string) {
	fmt.Fprintf(sb, "%s== %s (locals=%d params=%d) ==\n", indent, chunk.Name, chunk.LocalCount, chunk.ParamCount)
	for ip, ins := range chunk.Code {
		line := 0
		if ip < len(chunk.Lines) {
			line = chunk.Lines[ip]
		}
		fmt.Fprintf(sb, "%s%04d %4d  %-16s a=%-3d b=%d", indent, ip, line, ins.Op.String(), ins.A, ins.B)
		if ins.Op == OpLoadConst && int(ins.B) < len(chunk.Constants) {
			fmt.Fprintf(sb, "  ; %s", chunk.Constants[ins.B].TypeOf())
		}
		sb.WriteString("\n")
	}
	for _, fn := range chunk.Functions {
		if fn.Chunk != nil {
			disassembleChunk(sb, fn.Chunk, indent+"  ")
		}
	}
	for _, cls := range chunk.Classes {
		if cls.Ctor != nil && cls.Ctor.Chunk != nil {
			disassembleChunk(sb, cls.Ctor.Chunk, indent+"  ")
		}
		for _, m := range append(append([]MethodInit{}, cls.Methods...), cls.StaticMethods...) {
			if m.Fn != nil && m.Fn.Chunk != nil {
				disassembleChunk(sb, m.Fn.Chunk, indent+"  ")
			}
		}
	}
}
