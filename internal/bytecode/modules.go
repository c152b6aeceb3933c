package bytecode

import "github.com/go-ecmascript/ecmascript/internal/ast"

// pendingExport defers publishing an export until the end of the
// module body, after every top-level statement has run, so the
// exported slot holds its final value regardless of where the export
// statement appeared.
type pendingExport struct {
	name string
	slot uint16
	line int
}

// unwrapExport exposes the declaration inside an export statement so
// the hoisting passes see `export function f` and `export let x` the
// same way they see the bare forms.
func unwrapExport(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.ExportNamedDeclaration:
		if s.Declaration != nil {
			return s.Declaration
		}
	case *ast.ExportDefaultDeclaration:
		if fd, ok := s.Declaration.(*ast.FunctionDeclaration); ok && fd.Function.Name != "" {
			return fd
		}
	}
	return stmt
}

func unwrapExports(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(stmts))
	for i, stmt := range stmts {
		out[i] = unwrapExport(stmt)
	}
	return out
}

func (c *Compiler) requestIndex(source string) uint16 {
	for i, r := range c.chunk.Requests {
		if r == source {
			return uint16(i)
		}
	}
	c.chunk.Requests = append(c.chunk.Requests, source)
	return uint16(len(c.chunk.Requests) - 1)
}

// hoistImports declares and binds every import at the top of the
// module body. Imports are hoisted: dependency modules have already
// been evaluated by the time this body runs, so binding eagerly gives
// every top-level statement access to its imports regardless of where
// the import declaration appears.
func (c *Compiler) hoistImports(body []ast.Statement) {
	for _, stmt := range body {
		imp, ok := stmt.(*ast.ImportDeclaration)
		if !ok {
			continue
		}
		line := imp.Pos().Line
		c.requestIndex(imp.Source)
		for _, spec := range imp.Specifiers {
			if c.lexicalNameInScope(spec.Local) {
				c.fail(line, "identifier %q has already been declared", spec.Local)
				continue
			}
			slot := c.declareLocal(spec.Local, true, false)
			name := spec.Imported
			switch {
			case spec.Namespace:
				name = ""
			case spec.Default:
				name = "default"
			}
			c.chunk.ImportBindings = append(c.chunk.ImportBindings, ImportBinding{
				Request: imp.Source,
				Name:    name,
				Slot:    slot,
			})
			c.emit(OpImportBinding, 0, uint16(len(c.chunk.ImportBindings)-1), line)
		}
	}
}

func (c *Compiler) compileExportNamed(s *ast.ExportNamedDeclaration, line int) {
	if !c.chunk.ModuleBody {
		c.fail(line, "export declarations may only appear in a module")
		return
	}
	if s.Declaration != nil {
		c.compileStatement(s.Declaration)
		for _, name := range exportedDeclNames(s.Declaration) {
			slot, ok := c.resolveLocal(name)
			if !ok {
				// var/function declarations at module top level compile to
				// globals; mirror them through a slot for export.
				slot = c.declareAnonLocal()
				c.emitLoadIdentifier(name, line)
				c.emit(OpStoreLocal, 0, slot, line)
				c.emit(OpPop, 0, 0, line)
			}
			c.pendingExports = append(c.pendingExports, pendingExport{name: name, slot: slot, line: line})
		}
		return
	}

	if s.Source != "" {
		// Re-export: route each name through an anonymous import slot.
		c.requestIndex(s.Source)
		for _, spec := range s.Specifiers {
			slot := c.declareAnonLocal()
			c.chunk.ImportBindings = append(c.chunk.ImportBindings, ImportBinding{
				Request: s.Source,
				Name:    spec.Local,
				Slot:    slot,
			})
			c.emit(OpImportBinding, 0, uint16(len(c.chunk.ImportBindings)-1), line)
			c.pendingExports = append(c.pendingExports, pendingExport{name: spec.Exported, slot: slot, line: line})
		}
		return
	}

	for _, spec := range s.Specifiers {
		slot, ok := c.resolveLocal(spec.Local)
		if !ok {
			c.fail(line, "exported binding %q is not declared", spec.Local)
			continue
		}
		c.pendingExports = append(c.pendingExports, pendingExport{name: spec.Exported, slot: slot, line: line})
	}
}

func (c *Compiler) compileExportDefault(s *ast.ExportDefaultDeclaration, line int) {
	if !c.chunk.ModuleBody {
		c.fail(line, "export declarations may only appear in a module")
		return
	}
	switch d := s.Declaration.(type) {
	case *ast.FunctionDeclaration:
		// Hoisted like any function declaration; export its binding.
		slot, ok := c.resolveLocal(d.Function.Name)
		if !ok {
			slot = c.declareAnonLocal()
			c.emitLoadIdentifier(d.Function.Name, line)
			c.emit(OpStoreLocal, 0, slot, line)
			c.emit(OpPop, 0, 0, line)
		}
		c.pendingExports = append(c.pendingExports, pendingExport{name: "default", slot: slot, line: line})
	case *ast.ClassDeclaration:
		if d.Class.Name == "" {
			slot := c.declareAnonLocal()
			c.emitClass(d.Class, line)
			c.emit(OpStoreLocal, 0, slot, line)
			c.emit(OpPop, 0, 0, line)
			c.pendingExports = append(c.pendingExports, pendingExport{name: "default", slot: slot, line: line})
			return
		}
		c.compileStatement(d)
		slot, ok := c.resolveLocal(d.Class.Name)
		if !ok {
			slot = c.declareAnonLocal()
			c.emitLoadIdentifier(d.Class.Name, line)
			c.emit(OpStoreLocal, 0, slot, line)
			c.emit(OpPop, 0, 0, line)
		}
		c.pendingExports = append(c.pendingExports, pendingExport{name: "default", slot: slot, line: line})
	case ast.Expression:
		slot := c.declareAnonLocal()
		c.compileExpression(d)
		c.emit(OpStoreLocal, 0, slot, line)
		c.emit(OpPop, 0, 0, line)
		c.pendingExports = append(c.pendingExports, pendingExport{name: "default", slot: slot, line: line})
	default:
		c.fail(line, "unsupported default export %T", s.Declaration)
	}
}

func (c *Compiler) compileExportAll(s *ast.ExportAllDeclaration, line int) {
	if !c.chunk.ModuleBody {
		c.fail(line, "export declarations may only appear in a module")
		return
	}
	c.requestIndex(s.Source)
	if s.Exported != "" {
		// `export * as ns from "m"`: the dependency's namespace object
		// under a single name.
		slot := c.declareAnonLocal()
		c.chunk.ImportBindings = append(c.chunk.ImportBindings, ImportBinding{
			Request: s.Source,
			Slot:    slot,
		})
		c.emit(OpImportBinding, 0, uint16(len(c.chunk.ImportBindings)-1), line)
		c.pendingExports = append(c.pendingExports, pendingExport{name: s.Exported, slot: slot, line: line})
		return
	}
	c.chunk.ExportBindings = append(c.chunk.ExportBindings, ExportBinding{Star: true, Request: s.Source})
	c.emit(OpExportBinding, 0, uint16(len(c.chunk.ExportBindings)-1), line)
}

// flushExports emits the deferred OpExportBinding instructions at the
// end of the module body.
func (c *Compiler) flushExports() {
	for _, pe := range c.pendingExports {
		c.chunk.ExportBindings = append(c.chunk.ExportBindings, ExportBinding{Name: pe.name, Slot: pe.slot})
		c.emit(OpExportBinding, 0, uint16(len(c.chunk.ExportBindings)-1), pe.line)
	}
	c.pendingExports = nil
}

func exportedDeclNames(stmt ast.Statement) []string {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		var names []string
		for _, d := range s.Declarations {
			names = append(names, patternBoundNames(d.Target)...)
		}
		return names
	case *ast.FunctionDeclaration:
		return []string{s.Function.Name}
	case *ast.ClassDeclaration:
		return []string{s.Class.Name}
	}
	return nil
}

func patternBoundNames(pat ast.Pattern) []string {
	switch p := pat.(type) {
	case *ast.Identifier:
		return []string{p.Name}
	case *ast.ArrayPattern:
		var names []string
		for _, el := range p.Elements {
			if el != nil {
				names = append(names, patternBoundNames(el)...)
			}
		}
		return names
	case *ast.ObjectPattern:
		var names []string
		for _, prop := range p.Properties {
			names = append(names, patternBoundNames(prop.Value)...)
		}
		if p.Rest != nil {
			names = append(names, patternBoundNames(p.Rest)...)
		}
		return names
	case *ast.AssignmentPattern:
		return patternBoundNames(p.Left)
	case *ast.RestElement:
		return patternBoundNames(p.Argument)
	}
	return nil
}
