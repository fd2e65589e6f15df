package vm

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kittenlang/kitten/internal/bytecode"
	"github.com/rs/zerolog"
)

const (
	DEFAULT_MAX_FRAMES = 1000

	STRING_CLASS_NAME  = "String"
	OUTPUT_METHOD_NAME = "output"
)

var (
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrUnknownField      = errors.New("unknown field")
	ErrUnknownMethod     = errors.New("unknown method")
	ErrInvalidConstant   = errors.New("invalid constant")
	ErrInvalidLocal      = errors.New("invalid local")
	ErrInvalidOpcode     = errors.New("invalid opcode")
	ErrMissingReturn     = errors.New("routine ended without a return")
	ErrTooManyFrames     = errors.New("too many frames")
	ErrWrongArgCount     = errors.New("wrong number of arguments")
	ErrNilReceiver       = errors.New("nil receiver")
	ErrNoProgram         = errors.New("no program")
	ErrNoOutput          = errors.New("no output writer")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrJumpOutOfRoutine  = errors.New("jump target out of routine")
	ErrUnexpectedReturns = errors.New("unexpected return kind")
)

// A Value is an int64, a float64, a string, an *Object, a []string or nil.
type Value = any

type Object struct {
	Class  string
	Fields map[string]Value
}

type Config struct {
	Program *bytecode.Program
	Out     io.Writer

	// Clock returns a monotonic time in nanoseconds, it defaults to the time elapsed since
	// the creation of the VM.
	Clock func() int64

	Logger    zerolog.Logger
	MaxFrames int
}

// A VM executes the routines of a program, it is not safe for concurrent use.
type VM struct {
	program   *bytecode.Program
	out       io.Writer
	clock     func() int64
	logger    zerolog.Logger
	maxFrames int
	depth     int
}

func New(config Config) (*VM, error) {
	if config.Program == nil {
		return nil, ErrNoProgram
	}
	if config.Out == nil {
		return nil, ErrNoOutput
	}

	vm := &VM{
		program:   config.Program,
		out:       config.Out,
		clock:     config.Clock,
		logger:    config.Logger,
		maxFrames: config.MaxFrames,
	}
	if vm.clock == nil {
		start := time.Now()
		vm.clock = func() int64 {
			return int64(time.Since(start))
		}
	}
	if vm.maxFrames <= 0 {
		vm.maxFrames = DEFAULT_MAX_FRAMES
	}
	return vm, nil
}

// Run calls the entry point of the program with args.
func (vm *VM) Run(args []string) error {
	entry := vm.program.Entry
	vm.logger.Debug().Str("program", vm.program.ID).Str("class", entry.Class).Str("routine", entry.Routine).Msg("run")

	_, err := vm.Call(entry.Class, entry.Routine, args)
	return err
}

// Call calls a routine and returns its result, nil if the routine returns nothing.
func (vm *VM) Call(className, routineName string, args ...Value) (Value, error) {
	class, routine, err := vm.program.LookupRoutine(className, routineName)
	if err != nil {
		return nil, err
	}
	return vm.call(class, routine, args)
}

type frame struct {
	class   *bytecode.Class
	routine *bytecode.Routine
	locals  []Value
	stack   []Value
}

func (f *frame) push(v Value) {
	f.stack = append(f.stack, v)
}

func (f *frame) pop() (Value, error) {
	if len(f.stack) == 0 {
		return nil, fmt.Errorf("%w in %s.%s", ErrStackUnderflow, f.class.Name, f.routine.Name)
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

// popN pops n values and returns them in push order.
func (f *frame) popN(n int) ([]Value, error) {
	if len(f.stack) < n {
		return nil, fmt.Errorf("%w in %s.%s", ErrStackUnderflow, f.class.Name, f.routine.Name)
	}
	values := append([]Value(nil), f.stack[len(f.stack)-n:]...)
	f.stack = f.stack[:len(f.stack)-n]
	return values, nil
}

func (f *frame) popInt() (int64, error) {
	v, err := f.pop()
	if err != nil {
		return 0, err
	}
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: int expected, found %T", ErrTypeMismatch, v)
	}
	return i, nil
}

func (f *frame) popFloat() (float64, error) {
	v, err := f.pop()
	if err != nil {
		return 0, err
	}
	x, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: float expected, found %T", ErrTypeMismatch, v)
	}
	return x, nil
}

func (f *frame) popObject() (*Object, error) {
	v, err := f.pop()
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w: object expected, found %T", ErrTypeMismatch, v)
	}
	if obj == nil {
		return nil, ErrNilReceiver
	}
	return obj, nil
}

func (f *frame) constant(index int) (bytecode.Constant, error) {
	if index >= len(f.class.Constants) {
		return bytecode.Constant{}, fmt.Errorf("%w: %d in %s", ErrInvalidConstant, index, f.class.Name)
	}
	return f.class.Constants[index], nil
}

func (f *frame) stringConstant(index int) (string, error) {
	c, err := f.constant(index)
	if err != nil {
		return "", err
	}
	if c.Kind != bytecode.StringConstant {
		return "", fmt.Errorf("%w: %d is not a string", ErrInvalidConstant, index)
	}
	return c.Str, nil
}

func (f *frame) methodConstant(index int) (*bytecode.MethodRef, error) {
	c, err := f.constant(index)
	if err != nil {
		return nil, err
	}
	if c.Kind != bytecode.MethodConstant || c.Method == nil {
		return nil, fmt.Errorf("%w: %d is not a method", ErrInvalidConstant, index)
	}
	return c.Method, nil
}

func (vm *VM) call(class *bytecode.Class, routine *bytecode.Routine, args []Value) (Value, error) {
	if len(args) != routine.Params {
		return nil, fmt.Errorf("%w: %s.%s expects %d, got %d", ErrWrongArgCount, class.Name, routine.Name, routine.Params, len(args))
	}
	if vm.depth >= vm.maxFrames {
		return nil, ErrTooManyFrames
	}
	vm.depth++
	defer func() {
		vm.depth--
	}()

	f := &frame{
		class:   class,
		routine: routine,
		locals:  make([]Value, max(routine.Locals, routine.Params)),
	}
	copy(f.locals, args)

	result, err := vm.execute(f)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", class.Name, routine.Name, err)
	}
	return result, nil
}

func (vm *VM) execute(f *frame) (Value, error) {
	code := f.routine.Instructions

	for ip := 0; ip < len(code); {
		op := bytecode.Opcode(code[ip])
		if !op.IsValid() {
			return nil, fmt.Errorf("%w: %d at %d", ErrInvalidOpcode, code[ip], ip)
		}
		operands, read := bytecode.ReadOperands(op, code[ip+1:])
		ip += 1 + read

		switch op {
		case bytecode.OpPushConstant:
			c, err := f.constant(operands[0])
			if err != nil {
				return nil, err
			}
			switch c.Kind {
			case bytecode.IntConstant:
				f.push(c.Int)
			case bytecode.FloatConstant:
				f.push(c.Float)
			case bytecode.StringConstant:
				f.push(c.Str)
			default:
				return nil, fmt.Errorf("%w: %s cannot be pushed", ErrInvalidConstant, c)
			}
		case bytecode.OpPop:
			if _, err := f.pop(); err != nil {
				return nil, err
			}
		case bytecode.OpDup:
			v, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.push(v)
			f.push(v)
		case bytecode.OpLoad:
			if operands[0] >= len(f.locals) {
				return nil, fmt.Errorf("%w: %d", ErrInvalidLocal, operands[0])
			}
			f.push(f.locals[operands[0]])
		case bytecode.OpStore:
			if operands[0] >= len(f.locals) {
				return nil, fmt.Errorf("%w: %d", ErrInvalidLocal, operands[0])
			}
			v, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.locals[operands[0]] = v
		case bytecode.OpNew:
			obj, err := vm.newObject(f, operands[0])
			if err != nil {
				return nil, err
			}
			f.push(obj)
		case bytecode.OpGetField:
			name, err := f.stringConstant(operands[0])
			if err != nil {
				return nil, err
			}
			obj, err := f.popObject()
			if err != nil {
				return nil, err
			}
			v, ok := obj.Fields[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, obj.Class, name)
			}
			f.push(v)
		case bytecode.OpSetField:
			name, err := f.stringConstant(operands[0])
			if err != nil {
				return nil, err
			}
			v, err := f.pop()
			if err != nil {
				return nil, err
			}
			obj, err := f.popObject()
			if err != nil {
				return nil, err
			}
			if _, ok := obj.Fields[name]; !ok {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, obj.Class, name)
			}
			obj.Fields[name] = v
		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul:
			right, err := f.popInt()
			if err != nil {
				return nil, err
			}
			left, err := f.popInt()
			if err != nil {
				return nil, err
			}
			switch op {
			case bytecode.OpAdd:
				f.push(left + right)
			case bytecode.OpSub:
				f.push(left - right)
			default:
				f.push(left * right)
			}
		case bytecode.OpNeg:
			i, err := f.popInt()
			if err != nil {
				return nil, err
			}
			f.push(-i)
		case bytecode.OpIntToFloat:
			i, err := f.popInt()
			if err != nil {
				return nil, err
			}
			f.push(float64(i))
		case bytecode.OpFloatDiv:
			right, err := f.popFloat()
			if err != nil {
				return nil, err
			}
			left, err := f.popFloat()
			if err != nil {
				return nil, err
			}
			if right == 0 {
				return nil, ErrDivisionByZero
			}
			f.push(left / right)
		case bytecode.OpNanoTime:
			f.push(vm.clock())
		case bytecode.OpPrint:
			v, err := f.pop()
			if err != nil {
				return nil, err
			}
			if err := vm.print(v); err != nil {
				return nil, err
			}
		case bytecode.OpInvokeVirtual:
			if err := vm.invokeVirtual(f, operands[0]); err != nil {
				return nil, err
			}
		case bytecode.OpInvokeStatic:
			if err := vm.invokeStatic(f, operands[0]); err != nil {
				return nil, err
			}
		case bytecode.OpJump:
			ip = operands[0]
		case bytecode.OpJumpIfTrue:
			i, err := f.popInt()
			if err != nil {
				return nil, err
			}
			if i != 0 {
				ip = operands[0]
			}
		case bytecode.OpJumpIfEQ, bytecode.OpJumpIfNE, bytecode.OpJumpIfLT, bytecode.OpJumpIfLE, bytecode.OpJumpIfGT, bytecode.OpJumpIfGE:
			right, err := f.popInt()
			if err != nil {
				return nil, err
			}
			left, err := f.popInt()
			if err != nil {
				return nil, err
			}
			if compare(op, left, right) {
				ip = operands[0]
			}
		case bytecode.OpReturn:
			if f.routine.Returns != bytecode.KindVoid {
				return nil, fmt.Errorf("%w: void return in a routine returning %s", ErrUnexpectedReturns, f.routine.Returns)
			}
			return nil, nil
		case bytecode.OpReturnValue:
			if f.routine.Returns == bytecode.KindVoid {
				return nil, fmt.Errorf("%w: value returned by a void routine", ErrUnexpectedReturns)
			}
			return f.pop()
		}

		if op.IsJump() && ip > len(code) {
			return nil, fmt.Errorf("%w: %d", ErrJumpOutOfRoutine, ip)
		}
	}
	return nil, ErrMissingReturn
}

func compare(op bytecode.Opcode, left, right int64) bool {
	switch op {
	case bytecode.OpJumpIfEQ:
		return left == right
	case bytecode.OpJumpIfNE:
		return left != right
	case bytecode.OpJumpIfLT:
		return left < right
	case bytecode.OpJumpIfLE:
		return left <= right
	case bytecode.OpJumpIfGT:
		return left > right
	default:
		return left >= right
	}
}

func (vm *VM) newObject(f *frame, index int) (*Object, error) {
	name, err := f.stringConstant(index)
	if err != nil {
		return nil, err
	}
	class, ok := vm.program.Classes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bytecode.ErrUnknownClass, name)
	}

	obj := &Object{Class: name, Fields: make(map[string]Value, len(class.Fields))}
	for _, field := range class.Fields {
		obj.Fields[field.Name] = zeroValue(field.Kind)
	}
	return obj, nil
}

func zeroValue(kind bytecode.Kind) Value {
	switch kind {
	case bytecode.KindInt:
		return int64(0)
	case bytecode.KindFloat:
		return float64(0)
	}
	return nil
}

func (vm *VM) invokeVirtual(f *frame, index int) error {
	method, err := f.methodConstant(index)
	if err != nil {
		return err
	}
	args, err := f.popN(method.Args)
	if err != nil {
		return err
	}
	receiver, err := f.pop()
	if err != nil {
		return err
	}

	switch r := receiver.(type) {
	case string:
		if method.Class != STRING_CLASS_NAME || method.Name != OUTPUT_METHOD_NAME || method.Args != 0 {
			return fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		_, err := io.WriteString(vm.out, r)
		return err
	case *Object:
		if r == nil {
			return ErrNilReceiver
		}
		class, routine, err := vm.program.LookupRoutine(r.Class, method.Name)
		if err != nil || routine.Static {
			return fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		result, err := vm.call(class, routine, append([]Value{r}, args...))
		if err != nil {
			return err
		}
		if method.Returns != bytecode.KindVoid {
			f.push(result)
		}
		return nil
	}
	return fmt.Errorf("%w: %s on %T", ErrUnknownMethod, method, receiver)
}

func (vm *VM) invokeStatic(f *frame, index int) error {
	method, err := f.methodConstant(index)
	if err != nil {
		return err
	}
	class, routine, err := vm.program.LookupRoutine(method.Class, method.Name)
	if err != nil {
		return err
	}
	if !routine.Static || routine.Returns != method.Returns {
		return fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	args, err := f.popN(method.Args)
	if err != nil {
		return err
	}
	result, err := vm.call(class, routine, args)
	if err != nil {
		return err
	}
	if method.Returns != bytecode.KindVoid {
		f.push(result)
	}
	return nil
}

func (vm *VM) print(v Value) error {
	var s string
	switch val := v.(type) {
	case int64:
		s = strconv.FormatInt(val, 10)
	case float64:
		s = FormatFloat(val)
	case string:
		s = val
	default:
		return fmt.Errorf("%w: %T cannot be printed", ErrTypeMismatch, v)
	}
	_, err := io.WriteString(vm.out, s)
	return err
}

// FormatFloat returns the shortest decimal representation of f without exponent.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
