package gvm

// dispatch executes the handler for a single decoded opcode. Grounded
// on the switch in the original VM::run, reorganised as a Go switch
// over typed handlers instead of member functions.
func (vm *VM) dispatch(op Opcode) error {
	switch op {
	case Halt:
		vm.ip = 0
		return nil

	case Goto:
		addr, err := vm.readAddr()
		if err != nil {
			return err
		}
		vm.ip = addr
		return nil

	case Jmp:
		addr, err := vm.popAddr()
		if err != nil {
			return err
		}
		vm.ip = addr
		return nil

	case Je:
		return vm.jumpIfElseDiscard(func(v Value) bool { return v == 0 })
	case Jne:
		return vm.jumpIfElseDiscard(func(v Value) bool { return v != 0 })
	case Jgt:
		return vm.jumpIfElseDiscard(func(v Value) bool { return v > 0 })
	case Jlt:
		return vm.jumpIfElseDiscard(func(v Value) bool { return v < 0 })
	case Jget:
		return vm.jumpIfElseDiscard(func(v Value) bool { return v >= 0 })
	case Jlet:
		return vm.jumpIfElseDiscard(func(v Value) bool { return v <= 0 })

	case Band:
		return vm.binaryIntOp(func(a, b int64) int64 { return a & b })
	case Bor:
		return vm.binaryIntOp(func(a, b int64) int64 { return a | b })
	case Bxor:
		return vm.binaryIntOp(func(a, b int64) int64 { return a ^ b })
	case Bsl:
		return vm.binaryIntOp(func(a, b int64) int64 { return a << uint64(b) })
	case Bsr:
		return vm.binaryIntOp(func(a, b int64) int64 { return a >> uint64(b) })
	case Bsl1:
		return vm.unaryIntOp(func(a int64) int64 { return a << 1 })
	case Bsr1:
		return vm.unaryIntOp(func(a int64) int64 { return a >> 1 })

	case Add:
		return vm.binaryValOp(func(a, b Value) Value { return a + b })
	case Sub:
		return vm.binaryValOp(func(a, b Value) Value { return a - b })
	case Mul:
		return vm.binaryValOp(func(a, b Value) Value { return a * b })
	case Div:
		return vm.binaryValOp(func(a, b Value) Value { return a / b })
	case Mod:
		b, err := vm.popInt()
		if err != nil {
			return err
		}
		a, err := vm.popInt()
		if err != nil {
			return err
		}
		if b == 0 {
			return trap(DivideByZero)
		}
		vm.pushVal(Value(a % b))
		return nil

	case LoadUchar:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[uint8](a)) })
	case LoadUshort:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[uint16](a)) })
	case LoadUlong:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[uint64](a)) })
	case LoadUint:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[uint32](a)) })
	case LoadChar:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[int8](a)) })
	case LoadShort:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[int16](a)) })
	case LoadLong:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[int64](a)) })
	case LoadInt:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[int32](a)) })
	case LoadFloat:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[float32](a)) })
	case LoadDouble:
		return vm.loadTyped(func(a Addr) Value { return Value(loadT[float64](a)) })
	case LoadAddr:
		return vm.loadTyped(func(a Addr) Value { return addrToValue(Addr(loadT[uintptr](a))) })

	case LoadStackOffsConst:
		offs, err := vm.readValue()
		if err != nil {
			return err
		}
		vm.pushAddr(vm.sp + Addr(int64(offs)))
		return nil

	case LoadValConst:
		v, err := vm.readValue()
		if err != nil {
			return err
		}
		vm.pushVal(v)
		return nil

	case LoadAddrConst:
		a, err := vm.readAddr()
		if err != nil {
			return err
		}
		vm.pushAddr(a)
		return nil

	case StoreUchar:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, uint8(intOf(v))) })
	case StoreUshort:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, uint16(intOf(v))) })
	case StoreUlong:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, uint64(intOf(v))) })
	case StoreUint:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, uint32(intOf(v))) })
	case StoreChar:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, int8(intOf(v))) })
	case StoreShort:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, int16(intOf(v))) })
	case StoreLong:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, int64(intOf(v))) })
	case StoreInt:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, int32(intOf(v))) })
	case StoreFloat:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, float32(v)) })
	case StoreDouble:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, float64(v)) })
	case StoreAddr:
		return vm.storeTyped(func(a Addr, v Value) { storeT(a, uintptr(valueToAddr(v))) })

	case Pushb:
		n, err := vm.popInt()
		if err != nil {
			return err
		}
		return vm.adjustSP(n)
	case Popb:
		n, err := vm.popInt()
		if err != nil {
			return err
		}
		return vm.adjustSP(-n)
	case PushbConst:
		n, err := vm.readValue()
		if err != nil {
			return err
		}
		return vm.adjustSP(int64(n))
	case PopbConst:
		n, err := vm.readValue()
		if err != nil {
			return err
		}
		return vm.adjustSP(-int64(n))

	default:
		return trap(IPOutOfBounds)
	}
}

func (vm *VM) binaryValOp(f func(a, b Value) Value) error {
	b, err := vm.popVal()
	if err != nil {
		return err
	}
	a, err := vm.popVal()
	if err != nil {
		return err
	}
	vm.pushVal(f(a, b))
	return nil
}

func (vm *VM) binaryIntOp(f func(a, b int64) int64) error {
	b, err := vm.popInt()
	if err != nil {
		return err
	}
	a, err := vm.popInt()
	if err != nil {
		return err
	}
	vm.pushVal(Value(f(a, b)))
	return nil
}

func (vm *VM) unaryIntOp(f func(a int64) int64) error {
	a, err := vm.popInt()
	if err != nil {
		return err
	}
	vm.pushVal(Value(f(a)))
	return nil
}
