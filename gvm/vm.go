package gvm

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/pkg/errors"
)

// DefaultByteStackCapacity is the default general-purpose byte stack
// size (2 MiB), used for locals.
const DefaultByteStackCapacity = 1024 * 1024 * 2

// TrapKind classifies a VMTrap.
type TrapKind int

const (
	StackUnderflow TrapKind = iota
	ByteStackOverflow
	IPOutOfBounds
	DivideByZero
)

func (k TrapKind) String() string {
	switch k {
	case StackUnderflow:
		return "value stack underflow"
	case ByteStackOverflow:
		return "byte stack out of bounds"
	case IPOutOfBounds:
		return "instruction pointer out of program bounds"
	case DivideByZero:
		return "integer divide by zero"
	default:
		return "unknown trap"
	}
}

// VMTrap is raised for value-stack underflow, byte-stack overflow, an
// ip that has left the program image, and MOD divide-by-zero. Float DIV
// is exempt — IEEE-754 entitles it to produce Inf/NaN.
type VMTrap struct {
	Kind TrapKind
}

func (t *VMTrap) Error() string { return t.Kind.String() }

func trap(kind TrapKind) error {
	return errors.WithStack(&VMTrap{Kind: kind})
}

// VM is a stateful interpreter over a single Program image: an
// instruction pointer (nullable to signal halt), a value stack, and a
// general-purpose byte stack used for locals. The optional Trace writer
// below prints one line per dispatched opcode for debugging.
type VM struct {
	prog *Program

	ip Addr
	sp Addr

	valueStack []Value

	gpStack  []byte
	gpBase   Addr
	gpEnd    Addr
	progBase Addr
	progEnd  Addr

	// Trace, if non-nil, receives one line per dispatched opcode.
	Trace io.Writer
}

// NewVM constructs a VM bound to prog, with a byte stack of the given
// capacity (<=0 uses the default of 2 MiB).
func NewVM(prog *Program, byteStackCapacity int) *VM {
	if byteStackCapacity <= 0 {
		byteStackCapacity = DefaultByteStackCapacity
	}
	gp := make([]byte, byteStackCapacity)
	gpBase := Addr(uintptr(unsafe.Pointer(&gp[0])))

	return &VM{
		prog:     prog,
		gpStack:  gp,
		gpBase:   gpBase,
		gpEnd:    gpBase + Addr(byteStackCapacity),
		sp:       gpBase,
		ip:       prog.Base(),
		progBase: prog.Base(),
		progEnd:  prog.Base() + Addr(prog.Capacity()),
	}
}

// ValueStack exposes the current value stack, bottom to top.
func (vm *VM) ValueStack() []Value {
	return vm.valueStack
}

// Halted reports whether the instruction pointer has been nulled by
// HALT.
func (vm *VM) Halted() bool {
	return vm.ip == 0
}

func (vm *VM) pushVal(v Value) {
	vm.valueStack = append(vm.valueStack, v)
}

func (vm *VM) popVal() (Value, error) {
	n := len(vm.valueStack)
	if n == 0 {
		return 0, trap(StackUnderflow)
	}
	v := vm.valueStack[n-1]
	vm.valueStack = vm.valueStack[:n-1]
	return v, nil
}

func (vm *VM) pushAddr(a Addr) {
	vm.pushVal(addrToValue(a))
}

func (vm *VM) popAddr() (Addr, error) {
	v, err := vm.popVal()
	if err != nil {
		return 0, err
	}
	return valueToAddr(v), nil
}

func (vm *VM) popInt() (int64, error) {
	v, err := vm.popVal()
	if err != nil {
		return 0, err
	}
	return intOf(v), nil
}

func (vm *VM) readByte() (byte, error) {
	if vm.ip < vm.progBase || vm.ip >= vm.progEnd {
		return 0, trap(IPOutOfBounds)
	}
	b := *(*byte)(unsafe.Pointer(uintptr(vm.ip)))
	vm.ip++
	return b, nil
}

func (vm *VM) readValue() (Value, error) {
	if vm.ip < vm.progBase || vm.ip+Addr(unsafe.Sizeof(Value(0))) > vm.progEnd {
		return 0, trap(IPOutOfBounds)
	}
	v := *(*Value)(unsafe.Pointer(uintptr(vm.ip)))
	vm.ip += Addr(unsafe.Sizeof(v))
	return v, nil
}

func (vm *VM) readAddr() (Addr, error) {
	v, err := vm.readValue()
	if err != nil {
		return 0, err
	}
	return valueToAddr(v), nil
}

func loadT[T any](addr Addr) T {
	return *(*T)(unsafe.Pointer(uintptr(addr)))
}

func storeT[T any](addr Addr, v T) {
	*(*T)(unsafe.Pointer(uintptr(addr))) = v
}

func (vm *VM) loadTyped(read func(Addr) Value) error {
	addr, err := vm.popAddr()
	if err != nil {
		return err
	}
	vm.pushVal(read(addr))
	return nil
}

func (vm *VM) storeTyped(write func(Addr, Value)) error {
	addr, err := vm.popAddr()
	if err != nil {
		return err
	}
	val, err := vm.popVal()
	if err != nil {
		return err
	}
	write(addr, val)
	return nil
}

func (vm *VM) adjustSP(deltaBytes int64) error {
	next := vm.sp + Addr(deltaBytes)
	if next < vm.gpBase || next > vm.gpEnd {
		return trap(ByteStackOverflow)
	}
	vm.sp = next
	return nil
}

// jumpIfElseDiscard implements the conditional-jump family: pop a
// Value, then pop an address; if pred holds against the value, set ip
// to the address, otherwise discard it and fall through.
func (vm *VM) jumpIfElseDiscard(pred func(Value) bool) error {
	v, err := vm.popVal()
	if err != nil {
		return err
	}
	a, err := vm.popAddr()
	if err != nil {
		return err
	}
	if pred(v) {
		vm.ip = a
	}
	return nil
}

// Run drives the dispatch loop: read one opcode byte, advance ip,
// dispatch to its handler (which may read an immediate, mutate the
// value stack, mutate sp, or assign ip), until HALT sets ip to 0 or an
// opcode traps.
func (vm *VM) Run() error {
	for !vm.Halted() {
		opByte, err := vm.readByte()
		if err != nil {
			return err
		}
		op := Opcode(opByte)

		if vm.Trace != nil {
			fmt.Fprintln(vm.Trace, op.String())
		}

		if err := vm.dispatch(op); err != nil {
			return err
		}
	}
	return nil
}
