package bytecode

import "github.com/go-ecmascript/ecmascript/internal/value"

// UpvalueDef tells a closure where to find the value it captures: either
// a slot in the immediately enclosing frame (IsLocal) or an upvalue
// already captured by that enclosing frame (passed through).
type UpvalueDef struct {
	Index   uint16
	IsLocal bool
}

// TryInfo records the catch/finally targets guarding a protected
// region, addressed by index from OpPushTry's operand.
type TryInfo struct {
	CatchTarget   int
	FinallyTarget int
	HasCatch      bool
	HasFinally    bool
}

// Chunk is one function body's compiled form: its instruction stream,
// constant pool, and the frame metadata the VM needs to run it.
type Chunk struct {
	Name        string
	Code        []Instruction
	Constants   []value.Value
	Lines       []int
	TryInfos    []TryInfo
	LocalCount  int
	ParamCount  int
	HasRest     bool
	UpvalueDefs []UpvalueDef
	// TDZInit marks, per local slot, whether the frame should seed that
	// slot with the TDZ sentinel instead of undefined (let/const/class
	// bindings TDZ rule) when a fresh frame is built.
	TDZInit     []bool
	IsGenerator bool
	IsAsync     bool
	IsArrow     bool
	Strict      bool
	ModuleBody  bool

	// Functions and Classes are compile-time pools referenced by
	// OpClosure/OpNewClass operands; they hold compiler-only blueprints
	// rather than runtime value.Value, so they live alongside (not
	// inside) Constants.
	Functions []*FunctionProto
	Classes   []*ClassProto

	// Requests, ImportBindings, and ExportBindings are the module-body
	// linkage tables addressed by OpGetModuleNamespace, OpImportBinding,
	// and OpExportBinding operands; all empty for non-module chunks.
	Requests       []string
	ImportBindings []ImportBinding
	ExportBindings []ExportBinding
}

// ImportBinding wires one imported name into a local slot at module
// evaluation time. Name "" imports the dependency's namespace object
// itself; "default" its default export.
type ImportBinding struct {
	Request string
	Name    string
	Slot    uint16
}

// ExportBinding publishes one binding on the evaluating module's
// exports object: the current value of a local slot under Name, or,
// with Star set, every non-default export of Request re-exported.
type ExportBinding struct {
	Name    string
	Slot    uint16
	Star    bool
	Request string
}

// NewChunk creates an empty chunk ready for the compiler to append to.
func NewChunk(name string) *Chunk {
	return &Chunk{
		Name:      name,
		Code:      make([]Instruction, 0, 64),
		Constants: make([]value.Value, 0, 8),
		Lines:     make([]int, 0, 64),
	}
}

func (c *Chunk) emit(op OpCode, a byte, b uint16, line int) int {
	c.Code = append(c.Code, Instruction{Op: op, A: a, B: b})
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

func (c *Chunk) addConstant(v value.Value) uint16 {
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

func (c *Chunk) addTryInfo(info TryInfo) uint16 {
	c.TryInfos = append(c.TryInfos, info)
	return uint16(len(c.TryInfos) - 1)
}

func (c *Chunk) addFunction(f *FunctionProto) uint16 {
	c.Functions = append(c.Functions, f)
	return uint16(len(c.Functions) - 1)
}

func (c *Chunk) addClass(cl *ClassProto) uint16 {
	c.Classes = append(c.Classes, cl)
	return uint16(len(c.Classes) - 1)
}

// FunctionProto is the compile-time blueprint for a function: its code
// plus the metadata the VM needs to instantiate a closure from it at
// runtime (name, parameter shape, captured-upvalue layout).
type FunctionProto struct {
	Chunk    *Chunk
	Name     string
	ParamLen int
	HasRest  bool
	// Derived marks a class constructor whose class extends another,
	// so construction leaves `this` uninitialized (TDZ) until a
	// `super(...)` call runs
	Derived bool
	// Class points back to the ClassProto this FunctionProto is the
	// constructor of, nil for an ordinary function. The VM uses it at
	// construction time to apply instance field initializers.
	Class *ClassProto
}

// Closure is a runtime function value: a prototype plus the concrete
// upvalue cells captured from its defining scope.
type Closure struct {
	Proto    *FunctionProto
	Upvalues []*Cell
	This     *value.Value // bound `this` for arrow functions, nil otherwise
	// HomeObject is the object a method's `super` property lookups
	// resolve against; set when a method closure is instantiated off
	// a ClassProto, nil for ordinary functions.
	HomeObject *value.Object
	// SuperCtor is the direct superclass constructor, set on a derived
	// class's constructor closure so a `super(...)` call in its body
	// knows what to invoke.
	SuperCtor *value.Object
	// InstanceFields are this class's own (non-static) field
	// initializers, captured once at class-definition time (their keys
	// resolved, their initializer bodies closed over the defining
	// scope) and re-run against `this` on every construction.
	InstanceFields []FieldClosure
}

// FieldClosure pairs a resolved property key with the already-closed
// initializer for one instance field; Init is nil for a field with no
// initializer (the value is simply undefined).
type FieldClosure struct {
	Key  value.PropertyKey
	Init *Closure
}

// Cell is a single boxed variable shared between a frame and every
// closure that captures it, so writes made after capture are visible
// to the capturing closures.
type Cell struct {
	Value value.Value
}

// ClassProto is the compile-time blueprint for a class: its
// constructor function plus method/field definitions evaluated at
// class-definition time and re-applied to each new instance.
type ClassProto struct {
	Name          string
	Ctor          *FunctionProto
	Fields        []FieldInit
	StaticFields  []FieldInit
	Methods       []MethodInit
	StaticMethods []MethodInit
	StaticBlocks  []*FunctionProto
	HasSuperClass bool
	// PrivateNames maps each `#name` declared anywhere in the class body
	// to a unique Symbol; private names share one per-class namespace.
	// The VM does not read this map: private members are stored under
	// string keys interned from their names (see literalPropertyKey).
	PrivateNames map[string]*value.Symbol
}

type FieldInit struct {
	Key      value.PropertyKey
	KeyProto *FunctionProto // non-nil for a computed key, evaluated once at class-definition time
	Computed bool
	Private  bool
	Init     *FunctionProto // nil for no initializer; else a thunk evaluated with `this` bound
}

type MethodKind byte

const (
	MethodNormal MethodKind = iota
	MethodGetter
	MethodSetter
)

type MethodInit struct {
	Key      value.PropertyKey
	KeyProto *FunctionProto
	Computed bool
	Kind     MethodKind
	Fn       *FunctionProto
	Private  bool
}
