package gvm

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrOf[T any](v *T) Addr {
	return Addr(uintptr(unsafe.Pointer(v)))
}

func assembleAndRun(t *testing.T, stream []Elem) *VM {
	t.Helper()
	prog := NewProgram(0)
	asm := NewAssembler(prog)
	require.NoError(t, asm.Assemble(stream))

	vm := NewVM(prog, 0)
	require.NoError(t, vm.Run())
	return vm
}

// S1 — arithmetic.
func TestS1Arithmetic(t *testing.T) {
	var out int32
	stream := []Elem{
		Op(LoadValConst), Lit(2),
		Op(LoadValConst), Lit(3),
		Op(Add),
		Op(LoadAddrConst), AddrLit(addrOf(&out)),
		Op(StoreInt),
		Op(Halt),
	}
	assembleAndRun(t, stream)
	assert.EqualValues(t, 5, out)
}

// S2 — conditional jump taken.
func TestS2ConditionalJumpTaken(t *testing.T) {
	var out int32
	stream := []Elem{
		Op(LoadAddrConst), Label("L"),
		Op(LoadValConst), Lit(0),
		Op(Je),
		Op(LoadValConst), Lit(0),
		Op(LoadAddrConst), AddrLit(addrOf(&out)),
		Op(StoreInt),
		Op(Halt),
		Label("L"),
		Op(LoadValConst), Lit(7),
		Op(LoadAddrConst), AddrLit(addrOf(&out)),
		Op(StoreInt),
		Op(Halt),
	}
	assembleAndRun(t, stream)
	assert.EqualValues(t, 7, out)
}

// S3 — conditional jump not taken.
func TestS3ConditionalJumpNotTaken(t *testing.T) {
	var out int32
	stream := []Elem{
		Op(LoadAddrConst), Label("L"),
		Op(LoadValConst), Lit(1),
		Op(Je),
		Op(LoadValConst), Lit(0),
		Op(LoadAddrConst), AddrLit(addrOf(&out)),
		Op(StoreInt),
		Op(Halt),
		Label("L"),
		Op(LoadValConst), Lit(7),
		Op(LoadAddrConst), AddrLit(addrOf(&out)),
		Op(StoreInt),
		Op(Halt),
	}
	vm := assembleAndRun(t, stream)
	assert.EqualValues(t, 0, out)
	assert.Empty(t, vm.ValueStack())
}

// S4 — loop sum 2+3+4+5 over four int slots on the byte stack, using
// JLT to exit once the cursor reaches the slot past the last one.
func TestS4LoopSum(t *testing.T) {
	var res int32
	const slotBytes = 4 // sizeof(int32)

	stream := []Elem{
		// allocate 4 int slots + 1 cursor slot
		Op(PushbConst), Lit(5 * slotBytes),

		// store 2,3,4,5 into slots 0..3 (offset -20..-8, stride 4)
		Op(LoadValConst), Lit(2),
		Op(LoadStackOffsConst), Lit(-5 * slotBytes),
		Op(StoreInt),
		Op(LoadValConst), Lit(3),
		Op(LoadStackOffsConst), Lit(-4 * slotBytes),
		Op(StoreInt),
		Op(LoadValConst), Lit(4),
		Op(LoadStackOffsConst), Lit(-3 * slotBytes),
		Op(StoreInt),
		Op(LoadValConst), Lit(5),
		Op(LoadStackOffsConst), Lit(-2 * slotBytes),
		Op(StoreInt),

		// cursor slot (offset -4) holds a pointer to slot 0
		Op(LoadStackOffsConst), Lit(-5 * slotBytes),
		Op(LoadStackOffsConst), Lit(-1 * slotBytes),
		Op(StoreAddr),

		// accumulator init to 0
		Op(LoadValConst), Lit(0),
		Op(LoadAddrConst), AddrLit(addrOf(&res)),
		Op(StoreInt),

		Label("loop"),
		// res += *cursor
		Op(LoadAddrConst), AddrLit(addrOf(&res)),
		Op(LoadInt),
		Op(LoadStackOffsConst), Lit(-1 * slotBytes),
		Op(LoadAddr),
		Op(LoadInt),
		Op(Add),
		Op(LoadAddrConst), AddrLit(addrOf(&res)),
		Op(StoreInt),

		// cursor += 4
		Op(LoadStackOffsConst), Lit(-1 * slotBytes),
		Op(LoadAddr),
		Op(LoadValConst), Lit(slotBytes),
		Op(Add),
		Op(LoadStackOffsConst), Lit(-1 * slotBytes),
		Op(StoreAddr),

		// loop while cursor < &slot[4] (one past slot 3)
		Op(LoadAddrConst), Label("loop"),
		Op(LoadStackOffsConst), Lit(-1 * slotBytes),
		Op(LoadAddr),
		Op(LoadStackOffsConst), Lit(-1 * slotBytes),
		Op(Sub),
		Op(Jlt),

		Op(PopbConst), Lit(5 * slotBytes),
		Op(Halt),
	}

	prog := NewProgram(0)
	asm := NewAssembler(prog)
	require.NoError(t, asm.Assemble(stream))
	vm := NewVM(prog, 0)
	require.NoError(t, vm.Run())

	assert.EqualValues(t, 14, res)
}

// LOAD_VAL_CONST v ; HALT leaves exactly one top element equal to v,
// for values spanning zero, negatives, fractions, and large magnitudes.
func TestLoadValConstEncodingRoundTrip(t *testing.T) {
	for _, v := range []Value{0, 1, -1, 3.5, 1e18, -1e18} {
		stream := []Elem{Op(LoadValConst), Lit(v), Op(Halt)}
		vm := assembleAndRun(t, stream)
		require.Len(t, vm.ValueStack(), 1)
		assert.Equal(t, v, vm.ValueStack()[0])
	}
}

// Load/store round-trip for INT.
func TestLoadStoreRoundTripInt(t *testing.T) {
	var slot int32
	stream := []Elem{
		Op(LoadValConst), Lit(-42),
		Op(LoadAddrConst), AddrLit(addrOf(&slot)),
		Op(StoreInt),
		Op(LoadAddrConst), AddrLit(addrOf(&slot)),
		Op(LoadInt),
		Op(Halt),
	}
	vm := assembleAndRun(t, stream)
	require.Len(t, vm.ValueStack(), 1)
	assert.EqualValues(t, -42, vm.ValueStack()[0])
}

func TestInvariant4LoadStoreRoundTripDouble(t *testing.T) {
	var slot float64
	stream := []Elem{
		Op(LoadValConst), Lit(3.25),
		Op(LoadAddrConst), AddrLit(addrOf(&slot)),
		Op(StoreDouble),
		Op(LoadAddrConst), AddrLit(addrOf(&slot)),
		Op(LoadDouble),
		Op(Halt),
	}
	vm := assembleAndRun(t, stream)
	require.Len(t, vm.ValueStack(), 1)
	assert.Equal(t, Value(3.25), vm.ValueStack()[0])
}

func TestInvariant4LoadStoreRoundTripUchar(t *testing.T) {
	var slot uint8
	stream := []Elem{
		Op(LoadValConst), Lit(200),
		Op(LoadAddrConst), AddrLit(addrOf(&slot)),
		Op(StoreUchar),
		Op(LoadAddrConst), AddrLit(addrOf(&slot)),
		Op(LoadUchar),
		Op(Halt),
	}
	vm := assembleAndRun(t, stream)
	require.Len(t, vm.ValueStack(), 1)
	assert.EqualValues(t, 200, vm.ValueStack()[0])
}

func TestModDivideByZeroTraps(t *testing.T) {
	prog := NewProgram(0)
	asm := NewAssembler(prog)
	stream := []Elem{
		Op(LoadValConst), Lit(1),
		Op(LoadValConst), Lit(0),
		Op(Mod),
		Op(Halt),
	}
	require.NoError(t, asm.Assemble(stream))

	vm := NewVM(prog, 0)
	err := vm.Run()
	require.Error(t, err)

	var vmTrap *VMTrap
	require.ErrorAs(t, err, &vmTrap)
	assert.Equal(t, DivideByZero, vmTrap.Kind)
}

func TestFloatDivByZeroDoesNotTrap(t *testing.T) {
	stream := []Elem{
		Op(LoadValConst), Lit(1),
		Op(LoadValConst), Lit(0),
		Op(Div),
		Op(Halt),
	}
	vm := assembleAndRun(t, stream)
	require.Len(t, vm.ValueStack(), 1)
	assert.True(t, vm.ValueStack()[0] > 1e300 || vm.ValueStack()[0] != vm.ValueStack()[0] ||
		vm.ValueStack()[0] == Value(inf()))
}

func inf() float64 {
	var zero float64
	return 1 / zero
}

func TestValueStackUnderflowTraps(t *testing.T) {
	stream := []Elem{Op(Add), Op(Halt)}
	prog := NewProgram(0)
	asm := NewAssembler(prog)
	require.NoError(t, asm.Assemble(stream))

	vm := NewVM(prog, 0)
	err := vm.Run()
	require.Error(t, err)

	var vmTrap *VMTrap
	require.ErrorAs(t, err, &vmTrap)
	assert.Equal(t, StackUnderflow, vmTrap.Kind)
}

func TestByteStackOverflowTraps(t *testing.T) {
	stream := []Elem{
		Op(PopbConst), Lit(8),
		Op(Halt),
	}
	vm := NewVM(NewProgram(0), 16)
	asm := NewAssembler(vm.prog)
	require.NoError(t, asm.Assemble(stream))

	err := vm.Run()
	require.Error(t, err)

	var vmTrap *VMTrap
	require.ErrorAs(t, err, &vmTrap)
	assert.Equal(t, ByteStackOverflow, vmTrap.Kind)
}
