package module

import "github.com/go-ecmascript/ecmascript/internal/ast"

// FromProgram extracts a module Record's import and export entries
// from a parsed module Program. The record starts Unlinked; the caller
// installs Resolve and registers it with a Loader before linking.
func FromProgram(specifier string, prog *ast.Program) *Record {
	r := &Record{Specifier: specifier, Program: prog, Status: Unlinked}
	for _, stmt := range prog.Body {
		switch s := stmt.(type) {
		case *ast.ImportDeclaration:
			for _, spec := range s.Specifiers {
				entry := ImportEntry{ModuleRequest: s.Source, LocalName: spec.Local}
				switch {
				case spec.Namespace:
					entry.ImportName = "*"
				case spec.Default:
					entry.ImportName = "default"
				default:
					entry.ImportName = spec.Imported
				}
				r.Imports = append(r.Imports, entry)
			}
			if len(s.Specifiers) == 0 {
				// Bare `import "m"`: evaluated for side effects only.
				r.Imports = append(r.Imports, ImportEntry{ModuleRequest: s.Source})
			}

		case *ast.ExportNamedDeclaration:
			if s.Declaration != nil {
				for _, name := range declaredNames(s.Declaration) {
					r.Exports = append(r.Exports, ExportEntry{ExportName: name, LocalName: name})
				}
				continue
			}
			for _, spec := range s.Specifiers {
				e := ExportEntry{ExportName: spec.Exported}
				if s.Source != "" {
					e.ModuleRequest = s.Source
					e.ImportName = spec.Local
				} else {
					e.LocalName = spec.Local
				}
				r.Exports = append(r.Exports, e)
			}
			if s.Source != "" {
				r.Imports = append(r.Imports, ImportEntry{ModuleRequest: s.Source})
			}

		case *ast.ExportDefaultDeclaration:
			r.Exports = append(r.Exports, ExportEntry{ExportName: "default", LocalName: "*default*"})

		case *ast.ExportAllDeclaration:
			e := ExportEntry{ModuleRequest: s.Source}
			if s.Exported != "" {
				e.ExportName = s.Exported
				e.ImportName = "*"
			}
			r.Exports = append(r.Exports, e)
			r.Imports = append(r.Imports, ImportEntry{ModuleRequest: s.Source})
		}
	}
	return r
}

// declaredNames lists the top-level binding names a declaration
// introduces, the names `export <declaration>` exports.
func declaredNames(stmt ast.Statement) []string {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		var names []string
		for _, d := range s.Declarations {
			names = append(names, patternNames(d.Target)...)
		}
		return names
	case *ast.FunctionDeclaration:
		return []string{s.Function.Name}
	case *ast.ClassDeclaration:
		return []string{s.Class.Name}
	}
	return nil
}

func patternNames(pat ast.Pattern) []string {
	switch p := pat.(type) {
	case *ast.Identifier:
		return []string{p.Name}
	case *ast.ArrayPattern:
		var names []string
		for _, el := range p.Elements {
			if el != nil {
				names = append(names, patternNames(el)...)
			}
		}
		return names
	case *ast.ObjectPattern:
		var names []string
		for _, prop := range p.Properties {
			names = append(names, patternNames(prop.Value)...)
		}
		if p.Rest != nil {
			names = append(names, patternNames(p.Rest)...)
		}
		return names
	case *ast.AssignmentPattern:
		return patternNames(p.Left)
	case *ast.RestElement:
		return patternNames(p.Argument)
	}
	return nil
}
