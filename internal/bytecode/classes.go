package bytecode

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// emitClass lowers a class body to an OpNewClass, first evaluating the
// extends clause (OpNewClass pops the superclass constructor when the
// blueprint records one). The class value is left on the stack.
func (c *Compiler) emitClass(cb *ast.ClassBody, line int) {
	if cb.SuperClass != nil {
		c.compileExpression(cb.SuperClass)
	}
	proto := c.compileClass(cb, line)
	idx := c.chunk.addClass(proto)
	c.emit(OpNewClass, 0, idx, line)
}

// compileClass lowers a class body to a ClassProto: one constructor
// function plus method/field/static-block definitions the VM applies
// at class-definition time (statics) or instance-construction time
// (instance fields). Private names declared anywhere in the body share
// one per-class Symbol namespace.
func (c *Compiler) compileClass(cb *ast.ClassBody, line int) *ClassProto {
	proto := &ClassProto{
		Name:          cb.Name,
		HasSuperClass: cb.SuperClass != nil,
		PrivateNames:  map[string]*value.Symbol{},
	}
	for name := range cb.PrivateNames {
		proto.PrivateNames[name] = value.NewSymbol(name, true)
	}

	// A class's own name is visible (as a const binding) inside its own
	// body, including field initializers and the constructor, to support
	// self-reference (`static make() { return new Klass() }`).
	c.beginScope()
	if cb.Name != "" {
		c.declareLocal(cb.Name, true, false)
	}

	for _, el := range cb.Elements {
		switch e := el.(type) {
		case *ast.MethodDefinition:
			c.compileMethodElement(e, proto)
		case *ast.PropertyDefinition:
			c.compileFieldElement(e, proto)
		case *ast.StaticBlock:
			c.compileStaticBlock(e, proto)
		}
	}

	if proto.Ctor == nil {
		proto.Ctor = c.syntheticConstructor(cb.SuperClass != nil, line)
	}
	proto.Ctor.Derived = cb.SuperClass != nil
	proto.Ctor.Class = proto
	c.endScope()
	return proto
}

func (c *Compiler) compileMethodElement(m *ast.MethodDefinition, proto *ClassProto) {
	fn := c.compileFunction(m.Value)
	if m.Kind == ast.MethodConstructor {
		proto.Ctor = fn
		return
	}
	kind := MethodNormal
	switch m.Kind {
	case ast.MethodGetter:
		kind = MethodGetter
	case ast.MethodSetter:
		kind = MethodSetter
	}
	mi := MethodInit{Computed: m.Computed, Kind: kind, Fn: fn, Private: m.Private}
	if m.Computed {
		mi.KeyProto = c.compileComputedKeyThunk(m.Key)
	} else {
		mi.Key = c.literalPropertyKey(m.Key, m.Private)
	}
	if m.Static {
		proto.StaticMethods = append(proto.StaticMethods, mi)
	} else {
		proto.Methods = append(proto.Methods, mi)
	}
}

func (c *Compiler) compileFieldElement(p *ast.PropertyDefinition, proto *ClassProto) {
	fi := FieldInit{Computed: p.Computed, Private: p.Private}
	if p.Computed {
		fi.KeyProto = c.compileComputedKeyThunk(p.Key)
	} else {
		fi.Key = c.literalPropertyKey(p.Key, p.Private)
	}
	if p.Value != nil {
		fi.Init = c.compileFieldInitThunk(p.Value, p.Static)
	}
	if p.Static {
		proto.StaticFields = append(proto.StaticFields, fi)
	} else {
		proto.Fields = append(proto.Fields, fi)
	}
}

func (c *Compiler) compileStaticBlock(s *ast.StaticBlock, proto *ClassProto) {
	fc := newFunctionCompiler(c, "", false, false, false)
	fc.beginScope()
	for _, stmt := range s.Body {
		fc.hoistDeclaration(stmt)
	}
	fc.hoistBlockDeclaration(s.Body)
	for _, stmt := range s.Body {
		fc.compileStatement(stmt)
	}
	fc.emit(OpReturnUndefined, 0, 0, 0)
	fc.endScope()
	proto.StaticBlocks = append(proto.StaticBlocks, &FunctionProto{Chunk: fc.chunk})
}

// compileComputedKeyThunk wraps a computed class-element key in a
// zero-argument FunctionProto, evaluated exactly once at
// class-definition time
func (c *Compiler) compileComputedKeyThunk(key ast.Expression) *FunctionProto {
	fc := newFunctionCompiler(c, "", false, false, false)
	fc.beginScope()
	fc.compileExpression(key)
	fc.emit(OpReturn, 0, 0, key.Pos().Line)
	fc.endScope()
	return &FunctionProto{Chunk: fc.chunk}
}

// compileFieldInitThunk wraps a field initializer expression in a
// zero-argument FunctionProto invoked with `this` bound to the
// instance being constructed (or the class itself, for a static
// field).
func (c *Compiler) compileFieldInitThunk(init ast.Expression, static bool) *FunctionProto {
	fc := newFunctionCompiler(c, "", false, false, false)
	fc.beginScope()
	fc.compileExpression(init)
	fc.emit(OpReturn, 0, 0, init.Pos().Line)
	fc.endScope()
	return &FunctionProto{Chunk: fc.chunk}
}

func (c *Compiler) literalPropertyKey(key ast.Expression, private bool) value.PropertyKey {
	if private {
		if pi, ok := key.(*ast.PrivateIdentifier); ok {
			return value.StringKey(c.intern(pi.Name))
		}
	}
	return value.StringKey(c.atoms.Intern(literalKeyName(key)))
}

func literalKeyName(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLiteral:
		return k.Value
	case *ast.NumberLiteral:
		return value.NumberToString(k.Value)
	case *ast.PrivateIdentifier:
		return k.Name
	default:
		return ""
	}
}

// syntheticConstructor builds the implicit `constructor(...args) {
// super(...args) }` / `constructor() {}` every class gets when its
// body declares none
func (c *Compiler) syntheticConstructor(hasSuper bool, line int) *FunctionProto {
	fc := newFunctionCompiler(c, "constructor", false, false, false)
	fc.beginScope()
	if hasSuper {
		rest := fc.declareLocal("args", false, false)
		fc.chunk.HasRest = true
		fc.chunk.ParamCount = 1
		fc.emit(OpLoadLocal, 0, rest, line)
		fc.emit(OpSuperCall, 1, 0, line) // A=1: spread-form super call, rest array already on stack
		fc.emit(OpPop, 0, 0, line)
	}
	fc.emit(OpReturnUndefined, 0, 0, line)
	fc.endScope()
	return &FunctionProto{Chunk: fc.chunk, Name: "constructor", HasRest: hasSuper}
}
