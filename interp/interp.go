// Package interp executes a compiled bytecode image (spec.md §4.6). It
// implements a single-stack, fetch-decode-execute loop directly over a
// compiler.Bytecode, mirroring the teacher's vm.VM dispatch loop but typed
// against this language's richer Value/Scope model.
package interp

import (
	"fmt"

	"github.com/xvr-lang/xvr/compiler"
	"github.com/xvr-lang/xvr/diagnostics"
	"github.com/xvr-lang/xvr/lexer"
	"github.com/xvr-lang/xvr/parser"
	"github.com/xvr-lang/xvr/scope"
	"github.com/xvr-lang/xvr/unused"
	"github.com/xvr-lang/xvr/value"
)

// maxCallDepth bounds function-call recursion (spec.md §4.6 "Execution
// model"): exceeding it is a fatalError, not a recoverable frame error.
const maxCallDepth = 200

// foreachFrame is the interp-side state backing one active FOREACH_BEGIN/
// NEXT/END loop: snapshot of the collection's contents at BEGIN time, plus
// the cursor into it and the identifier names NEXT rebinds each iteration.
type foreachFrame struct {
	keyName  string
	valName  string
	hasKey   bool
	arrItems []value.Value
	dictKeys []value.Value
	dict     *value.ValueDictionary
	isDict   bool
	idx      int
}

// Interpreter runs one bytecode image (or one function call's fresh child
// image) against a scope chain. A function call spins up a new Interpreter
// sharing the parent's literal pool, function section, and installed
// natives/hooks/diagnostics callbacks, but with its own value stack and a
// scope rooted at the callee's captured closure (spec.md §4.6 "each call
// runs in its own frame").
type Interpreter struct {
	stack *valueStack
	sc    *scope.Scope

	lits  []value.Value
	funcs []compiler.FunctionProto
	code  []byte
	ip    int

	depth    int
	panicked bool
	returned bool
	retVals  []value.Value

	foreach []*foreachFrame

	natives map[string]value.NativeFn
	hooks   map[string]value.NativeHook

	printFn  func(string)
	assertFn func(string)
	errorFn  func(error)
}

// New constructs a root Interpreter with the default diagnostics callbacks
// and the fixed set of built-in natives installed (spec.md §6 "Built-in
// natives").
func New() *Interpreter {
	in := &Interpreter{
		stack:    newValueStack(),
		sc:       scope.New(nil),
		natives:  make(map[string]value.NativeFn),
		hooks:    make(map[string]value.NativeHook),
		printFn:  diagnostics.DefaultPrint,
		assertFn: diagnostics.DefaultAssert,
		errorFn:  diagnostics.DefaultError,
	}
	in.installBuiltinNatives()
	return in
}

// InstallNative registers a host-provided native function under name,
// overriding a built-in of the same name if one exists.
func (in *Interpreter) InstallNative(name string, fn value.NativeFn) {
	in.natives[name] = fn
}

// InstallHook registers a host-provided IMPORT handler under name.
func (in *Interpreter) InstallHook(name string, hook value.NativeHook) {
	in.hooks[name] = hook
}

// SetPrint overrides the PRINT opcode's output sink.
func (in *Interpreter) SetPrint(fn func(string)) { in.printFn = fn }

// SetAssert overrides the ASSERT opcode's failure sink.
func (in *Interpreter) SetAssert(fn func(string)) { in.assertFn = fn }

// SetError overrides the sink every runtime and fatal error is routed to.
func (in *Interpreter) SetError(fn func(error)) { in.errorFn = fn }

// RunSource lexes, parses, checks for unused declarations, compiles, and
// runs source against in's current scope in one step (spec.md §4
// "lexer→parser→AST→unused-checker→compiler→bytecode→interpreter"). Unused
// declarations are warnings, not compile errors: they are reported through
// the installed error callback and execution proceeds regardless.
func (in *Interpreter) RunSource(source string) error {
	toks := lexer.New(source).Scan()
	program := parser.FromTokens(toks).ParseProgram()
	for _, w := range unused.Check(program) {
		in.errorFn(fmt.Errorf("warning: %s", w.String()))
	}
	bc, err := compiler.Compile(program)
	if err != nil {
		return err
	}
	return in.RunBytecode(bc)
}

// RunImage decodes a serialized bytecode image (spec.md §6 "Bytecode image
// format") and runs it — the byte-buffer-facing counterpart to RunBytecode,
// matching spec.md §4.6's "run(interpreter, bytecode, length) reads the
// header, the literal pool, the function section..." contract.
func (in *Interpreter) RunImage(data []byte) error {
	bc, err := compiler.Decode(data)
	if err != nil {
		return err
	}
	return in.RunBytecode(bc)
}

// RunBytecode executes a compiled image's top-level code section against
// in's current scope.
func (in *Interpreter) RunBytecode(bc compiler.Bytecode) (err error) {
	in.lits = bc.Literals
	in.funcs = bc.Functions
	in.code = bc.Code
	in.ip = 0
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(fatalError); ok {
				in.errorFn(fe)
				err = fe
				return
			}
			panic(r)
		}
	}()
	in.run()
	return nil
}

// fail raises a frameError: the panic flag is set and the current frame's
// run() catches it, stopping execution without propagating further.
func (in *Interpreter) fail(format string, args ...any) {
	panic(frameError{Message: fmt.Sprintf(format, args...)})
}

// fatal raises a fatalError: every enclosing frame's run() re-panics it
// until the outermost RunBytecode/CallFunction entry point converts it to
// a returned error.
func (in *Interpreter) fatal(format string, args ...any) {
	panic(fatalError{Message: fmt.Sprintf(format, args...)})
}

func (in *Interpreter) push(v value.Value) { in.stack.Push(v) }

func (in *Interpreter) pop() value.Value {
	v, ok := in.stack.Pop()
	if !ok {
		in.fatal("stack underflow")
	}
	return v
}

// resolveIdent turns an unresolved Identifier value (as OP_LITERAL pushes
// it) into its bound value; any other Kind passes through unchanged. This
// mirrors OP_LITERAL_RAW's own behavior and is reused wherever an opcode
// handler needs a resolved operand without having gone through LITERAL_RAW
// (e.g. TYPE_OF's operand and ASSERT's message).
func (in *Interpreter) resolveIdent(v value.Value) value.Value {
	if v.Kind != value.KindIdentifier {
		return v
	}
	resolved, ok := in.sc.Get(v.Str())
	if !ok {
		in.fail("undeclared variable %q", v.Str())
		return value.Null
	}
	return resolved
}

// popResolved pops the top of stack and resolves it if it's an Identifier.
func (in *Interpreter) popResolved() value.Value {
	return in.resolveIdent(in.pop())
}

// run is the fetch-decode-execute loop (spec.md §4.6 "Execution model").
// A frameError panics out of the handler and is recovered here, stopping
// this frame only; a fatalError is recovered and re-panicked so it keeps
// unwinding through every enclosing call frame.
func (in *Interpreter) run() {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(frameError); ok {
				in.errorFn(fe)
				in.panicked = true
				return
			}
			panic(r)
		}
	}()

	for in.ip < len(in.code) && !in.returned {
		in.step()
	}
}

func (in *Interpreter) step() {
	op := compiler.Opcode(in.code[in.ip])
	def, err := compiler.Get(op)
	if err != nil {
		in.fatal("%s", err.Error())
	}
	operandOffset := in.ip + 1
	operands := make([]int, len(def.OperandWidths))
	offset := operandOffset
	for i, w := range def.OperandWidths {
		operands[i] = compiler.ReadOperand(in.code, offset, w)
		offset += w
	}
	nextIP := offset

	switch op {
	case compiler.OP_PASS, compiler.OP_GROUPING_BEGIN, compiler.OP_GROUPING_END:
		// no-ops: the bytecode stream is already flat, so grouping markers
		// need no recursive sub-execution.

	case compiler.OP_ASSERT:
		msg := in.popResolved()
		cond := in.popResolved()
		if !cond.Truthy() {
			text := "assertion failed"
			if !msg.IsNull() {
				text = in.resolveIdent(msg).PrettyPrint()
			}
			in.assertFn(text)
			in.fatal("%s", text)
		}

	case compiler.OP_PRINT:
		v := in.popResolved()
		in.printFn(v.PrettyPrint())

	case compiler.OP_LITERAL:
		in.push(in.lits[operands[0]].Copy())

	case compiler.OP_LITERAL_LONG:
		in.push(in.lits[operands[0]].Copy())

	case compiler.OP_LITERAL_RAW:
		in.push(in.popResolved())

	case compiler.OP_NEGATE:
		v := in.popResolved()
		switch v.Kind {
		case value.KindInteger:
			in.push(value.NewInt(-v.Int()))
		case value.KindFloat:
			in.push(value.NewFloat(-v.Float()))
		default:
			in.fail("cannot negate a %s value", v.Kind)
		}

	case compiler.OP_INVERT:
		v := in.popResolved()
		in.push(value.NewBool(!v.Truthy()))

	case compiler.OP_ADDITION, compiler.OP_SUBTRACTION, compiler.OP_MULTIPLICATION,
		compiler.OP_DIVISION, compiler.OP_MODULO:
		rhs := in.popResolved()
		lhs := in.popResolved()
		in.push(in.binaryArith(lhs, rhs, arithOpFor(op)))

	case compiler.OP_VAR_ADDITION_ASSIGN, compiler.OP_VAR_SUBTRACTION_ASSIGN,
		compiler.OP_VAR_MULTIPLICATION_ASSIGN, compiler.OP_VAR_DIVISION_ASSIGN,
		compiler.OP_VAR_MODULO_ASSIGN:
		rhs := in.popResolved()
		ident := in.pop()
		old, ok := in.sc.Get(ident.Str())
		if !ok {
			in.fail("undeclared variable %q", ident.Str())
			break
		}
		result := in.binaryArith(old, rhs, compoundArithOpFor(op))
		if err := in.sc.Set(ident.Str(), result); err != nil {
			in.fail("%s", err.Error())
			break
		}
		stored, _ := in.sc.Get(ident.Str())
		in.push(stored)

	case compiler.OP_SCOPE_BEGIN:
		in.sc = scope.New(in.sc)

	case compiler.OP_SCOPE_END:
		old := in.sc
		in.sc = scope.Pop(in.sc)
		old.Release()

	case compiler.OP_VAR_DECL, compiler.OP_VAR_DECL_LONG:
		typLit := in.lits[operands[0]]
		t := typLit.Type()
		initVal := in.popResolved()
		ident := in.pop()
		if t.TypeOf == value.KindFloat && initVal.Kind == value.KindInteger {
			promoted, err := initVal.ToFloat()
			if err != nil {
				in.fail("%s", err.Error())
				break
			}
			initVal = promoted
		}
		if !t.Accepts(initVal.Kind) {
			in.fail("cannot declare %q as %s with a %s value", ident.Str(), t.PrettyPrint(), initVal.Kind)
			break
		}
		if !in.sc.Declare(ident.Str(), initVal, *t, t.Constant) {
			in.fail("%q is already declared in this scope", ident.Str())
		}

	case compiler.OP_FN_DECL, compiler.OP_FN_DECL_LONG:
		proto := in.funcs[operands[0]]
		fn := &value.Function{
			Bytecode:      proto.Code,
			CapturedScope: scope.Copy(in.sc),
			Arity:         len(proto.ParamNames),
			HasRestParam:  proto.HasRestParam,
			Name:          proto.Name,
			ParamNames:    proto.ParamNames,
			RestParamName: proto.RestParamName,
			ParamTypes:    proto.ParamTypes,
			ReturnTypes:   proto.ReturnTypes,
		}
		if !in.sc.Declare(proto.Name, value.NewFunction(fn), value.Type{TypeOf: value.KindFunction}, true) {
			in.fail("%q is already declared in this scope", proto.Name)
		}

	case compiler.OP_VAR_ASSIGN:
		rhs := in.popResolved()
		ident := in.pop()
		if err := in.sc.Set(ident.Str(), rhs); err != nil {
			in.fail("%s", err.Error())
			break
		}
		stored, _ := in.sc.Get(ident.Str())
		in.push(stored)

	case compiler.OP_TYPE_CAST:
		typLit := in.popResolved()
		v := in.popResolved()
		cast, err := castTo(v, typLit.Type().TypeOf)
		if err != nil {
			in.fail("%s", err.Error())
			break
		}
		in.push(cast)

	case compiler.OP_TYPE_OF:
		top := in.pop()
		if top.Kind == value.KindIdentifier {
			if t, ok := in.sc.GetType(top.Str()); ok {
				in.push(value.NewType(&t))
				break
			}
		}
		v := in.resolveIdent(top)
		t := v.TypeOf()
		in.push(value.NewType(&t))

	case compiler.OP_COMPARE_EQUAL, compiler.OP_NOT_EQUAL, compiler.OP_LESS,
		compiler.OP_LESS_EQUAL, compiler.OP_GREATER, compiler.OP_GREATER_EQUAL:
		rhs := in.popResolved()
		lhs := in.popResolved()
		in.push(in.compare(lhs, rhs, op))

	case compiler.OP_AND:
		rhs := in.popResolved()
		lhs := in.popResolved()
		in.push(value.NewBool(lhs.Truthy() && rhs.Truthy()))

	case compiler.OP_OR:
		rhs := in.popResolved()
		lhs := in.popResolved()
		in.push(value.NewBool(lhs.Truthy() || rhs.Truthy()))

	case compiler.OP_JUMP:
		nextIP = operands[0]

	case compiler.OP_IF_FALSE_JUMP:
		cond := in.popResolved()
		if !cond.Truthy() {
			nextIP = operands[0]
		}

	case compiler.OP_FN_CALL:
		argc := operands[0]
		args := make([]value.Value, argc)
		for i := argc - 1; i >= 0; i-- {
			// every argument expression already resolved itself while
			// compiling (a bare variable goes through LITERAL_RAW before
			// FN_CALL ever runs), so this is just a pop, not a resolve.
			args[i] = in.pop()
		}
		name := in.pop()
		in.dispatchCall(name.Str(), args)

	case compiler.OP_DOT:
		// never emitted by this compiler (dot-calls shuffle to FN_CALL at
		// compile time); kept for catalog completeness.

	case compiler.OP_FN_RETURN:
		count := int(in.stack.items[0].Int())
		vals := make([]value.Value, count)
		copy(vals, in.stack.items[1:1+count])
		in.retVals = vals
		in.returned = true

	case compiler.OP_POP_STACK:
		v := in.pop()
		v.Release()

	case compiler.OP_IMPORT:
		alias := in.pop()
		ident := in.pop()
		hook, ok := in.hooks[ident.Str()]
		if !ok {
			in.fail("no import hook registered for %q", ident.Str())
			break
		}
		if err := hook(in, ident, alias); err != nil {
			in.fail("%s", err.Error())
		}

	case compiler.OP_INDEX:
		third := in.popResolved()
		second := in.popResolved()
		first := in.popResolved()
		compound := in.popResolved()
		in.execIndex(compound, first, second, third)

	case compiler.OP_INDEX_ASSIGN_INTERMEDIATE:
		third := in.popResolved()
		second := in.popResolved()
		first := in.popResolved()
		ident := in.pop()
		container, ok := in.sc.Peek(ident.Str())
		if !ok {
			in.fail("undeclared variable %q", ident.Str())
			break
		}
		in.push(ident)
		in.push(container)
		in.push(first)
		in.push(second)
		in.push(third)

	case compiler.OP_INDEX_ASSIGN:
		rhs := in.popResolved()
		third := in.pop()
		second := in.pop()
		first := in.pop()
		container := in.pop()
		ident := in.pop()
		in.execIndexAssign(container, first, second, third, rhs, byte(operands[0]))
		stored, _ := in.sc.Peek(ident.Str())
		in.push(stored)

	case compiler.OP_ARRAY_BUILD:
		n := operands[0]
		elems := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = in.popResolved()
		}
		arr := value.NewValueArrayCap(n)
		for _, e := range elems {
			arr.Push(e.Copy())
		}
		in.push(value.NewArray(arr))

	case compiler.OP_DICT_BUILD:
		n := operands[0]
		type pair struct{ k, v value.Value }
		pairs := make([]pair, n)
		for i := n - 1; i >= 0; i-- {
			v := in.popResolved()
			k := in.popResolved()
			pairs[i] = pair{k, v}
		}
		d := value.NewValueDictionary()
		for _, p := range pairs {
			if err := d.Set(p.k.Copy(), p.v.Copy()); err != nil {
				in.fail("%s", err.Error())
				break
			}
		}
		in.push(value.NewDictionary(d))

	case compiler.OP_FOREACH_BEGIN:
		keyName := in.lits[operands[0]].Str()
		valName := in.lits[operands[1]].Str()
		hasKey := operands[2] != 0
		collection := in.popResolved()
		frame := &foreachFrame{keyName: keyName, valName: valName, hasKey: hasKey}
		switch collection.Kind {
		case value.KindArray:
			frame.arrItems = collection.Array().Copy().Items()
		case value.KindDictionary:
			frame.isDict = true
			frame.dict = collection.Dictionary().Copy()
			frame.dictKeys = frame.dict.Keys()
		default:
			in.fail("cannot iterate a %s value", collection.Kind)
			return
		}
		in.foreach = append(in.foreach, frame)

	case compiler.OP_FOREACH_NEXT:
		frame := in.foreach[len(in.foreach)-1]
		var exhausted bool
		var key, val value.Value
		if frame.isDict {
			exhausted = frame.idx >= len(frame.dictKeys)
			if !exhausted {
				key = frame.dictKeys[frame.idx]
				val, _ = frame.dict.Get(key)
			}
		} else {
			exhausted = frame.idx >= len(frame.arrItems)
			if !exhausted {
				key = value.NewInt(int32(frame.idx))
				val = frame.arrItems[frame.idx]
			}
		}
		if exhausted {
			in.foreach = in.foreach[:len(in.foreach)-1]
			nextIP = operands[0]
			break
		}
		frame.idx++
		in.bindLoopVar(frame.valName, val.Copy())
		if frame.hasKey {
			in.bindLoopVar(frame.keyName, key.Copy())
		}

	case compiler.OP_FOREACH_END:
		if len(in.foreach) > 0 {
			in.foreach = in.foreach[:len(in.foreach)-1]
		}

	default:
		in.fatal("unhandled opcode %d", op)
	}

	in.ip = nextIP
}

// bindLoopVar declares name in the current scope the first time a foreach
// loop runs, and updates it on every later iteration (the loop's
// SCOPE_BEGIN/SCOPE_END wraps the whole loop, not each iteration).
func (in *Interpreter) bindLoopVar(name string, v value.Value) {
	if !in.sc.Declare(name, v, value.Type{TypeOf: value.KindAny}, false) {
		in.sc.Set(name, v)
	}
}

func arithOpFor(op compiler.Opcode) arithOp {
	switch op {
	case compiler.OP_ADDITION:
		return arithAdd
	case compiler.OP_SUBTRACTION:
		return arithSub
	case compiler.OP_MULTIPLICATION:
		return arithMul
	case compiler.OP_DIVISION:
		return arithDiv
	case compiler.OP_MODULO:
		return arithMod
	}
	return arithAdd
}

func compoundArithOpFor(op compiler.Opcode) arithOp {
	switch op {
	case compiler.OP_VAR_ADDITION_ASSIGN:
		return arithAdd
	case compiler.OP_VAR_SUBTRACTION_ASSIGN:
		return arithSub
	case compiler.OP_VAR_MULTIPLICATION_ASSIGN:
		return arithMul
	case compiler.OP_VAR_DIVISION_ASSIGN:
		return arithDiv
	case compiler.OP_VAR_MODULO_ASSIGN:
		return arithMod
	}
	return arithAdd
}

// dispatchCall resolves name against user-defined functions first, then
// installed natives, invoking whichever it finds (spec.md §4.6 "FN_CALL").
func (in *Interpreter) dispatchCall(name string, args []value.Value) {
	if fnVal, ok := in.sc.Get(name); ok && fnVal.Kind == value.KindFunction {
		results := in.callFunction(fnVal.Function(), args)
		for _, r := range results {
			in.push(r)
		}
		return
	}
	if native, ok := in.natives[name]; ok {
		callArgs := value.NewValueArrayCap(len(args))
		for _, a := range args {
			callArgs.Push(a)
		}
		n, err := native(in, callArgs)
		if err != nil {
			in.fail("%s", err.Error())
			return
		}
		if n < 0 {
			in.fail("wrong number of arguments to %q", name)
		}
		return
	}
	in.fail("undeclared function %q", name)
}

// callFunction runs fn's body in a fresh child Interpreter with its own
// isolated value stack (floor 0), scoped to a new frame chained off fn's
// captured closure (spec.md §4.6 "each call runs in its own frame").
// Parameters bind by name, pass-by-value via Scope.Get's copy semantics.
func (in *Interpreter) callFunction(fn *value.Function, args []value.Value) []value.Value {
	if in.depth+1 > maxCallDepth {
		in.fatal("call stack exceeds the recursion limit of %d", maxCallDepth)
		return nil
	}
	captured, _ := fn.CapturedScope.(*scope.Scope)
	callScope := scope.New(scope.Copy(captured))

	for i, pname := range fn.ParamNames {
		var v value.Value
		if i < len(args) {
			v = args[i]
		} else {
			v = value.Null
		}
		t := value.Type{TypeOf: value.KindAny}
		if i < len(fn.ParamTypes) {
			t = fn.ParamTypes[i]
		}
		if t.TypeOf == value.KindFloat && v.Kind == value.KindInteger {
			if promoted, err := v.ToFloat(); err == nil {
				v = promoted
			}
		}
		callScope.Declare(pname, v.Copy(), t, false)
	}
	if fn.HasRestParam {
		rest := value.NewValueArray()
		if len(args) > len(fn.ParamNames) {
			for _, v := range args[len(fn.ParamNames):] {
				rest.Push(v.Copy())
			}
		}
		callScope.Declare(fn.RestParamName, value.NewArray(rest), value.Type{TypeOf: value.KindArray}, false)
	}

	child := &Interpreter{
		stack:    newValueStack(),
		sc:       callScope,
		lits:     in.lits,
		funcs:    in.funcs,
		code:     fn.Bytecode,
		natives:  in.natives,
		hooks:    in.hooks,
		printFn:  in.printFn,
		assertFn: in.assertFn,
		errorFn:  in.errorFn,
		depth:    in.depth + 1,
	}
	child.run()

	scope.Pop(callScope)
	callScope.Release()

	return child.retVals
}

// CallFunction invokes a top-level declared function by name from host
// code (e.g. a CLI entry point driving a script's exported function).
func (in *Interpreter) CallFunction(name string, args []value.Value) (results []value.Value, err error) {
	fnVal, ok := in.sc.Get(name)
	if !ok || fnVal.Kind != value.KindFunction {
		return nil, fmt.Errorf("no such function %q", name)
	}
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(fatalError); ok {
				in.errorFn(fe)
				err = fe
				return
			}
			panic(r)
		}
	}()
	return in.callFunction(fnVal.Function(), args), nil
}

// --- value.Host ---

func (in *Interpreter) Push(v value.Value) { in.stack.Push(v) }

func (in *Interpreter) Pop() (value.Value, bool) { return in.stack.Pop() }

func (in *Interpreter) Declare(name string, v value.Value) error {
	if !in.sc.Declare(name, v, value.Type{TypeOf: value.KindAny}, false) {
		return fmt.Errorf("%q is already declared in this scope", name)
	}
	return nil
}

func (in *Interpreter) Peek(name string) (value.Value, bool) { return in.sc.Peek(name) }

func (in *Interpreter) Set(name string, v value.Value) error { return in.sc.Set(name, v) }
