package gvm

// Opcode identifies a single VM instruction, named in all-caps via a
// string table mapping values to mnemonics.
type Opcode byte

const (
	Halt Opcode = iota
	Goto
	Jmp
	Je
	Jne
	Jgt
	Jlt
	Jget
	Jlet

	Band
	Bor
	Bxor
	Bsl1
	Bsr1
	Bsl
	Bsr

	Add
	Sub
	Mul
	Div
	Mod

	LoadUchar
	LoadUshort
	LoadUlong
	LoadUint

	LoadChar
	LoadShort
	LoadLong
	LoadInt

	LoadFloat
	LoadDouble
	LoadAddr

	LoadStackOffsConst
	LoadValConst
	LoadAddrConst

	StoreUchar
	StoreUshort
	StoreUlong
	StoreUint

	StoreChar
	StoreShort
	StoreLong
	StoreInt

	StoreFloat
	StoreDouble
	StoreAddr

	Pushb
	Popb
	PushbConst
	PopbConst
)

// OperandKind classifies the immediate an opcode expects, per the
// assembler's fixed operand discipline.
type OperandKind int

const (
	NoOperand OperandKind = iota
	ValueOperand
	AddrOperand
)

var operandKinds = map[Opcode]OperandKind{
	Goto:               AddrOperand,
	LoadAddrConst:      AddrOperand,
	LoadValConst:       ValueOperand,
	LoadStackOffsConst: ValueOperand,
	PushbConst:         ValueOperand,
	PopbConst:          ValueOperand,
}

// Operand reports the immediate kind op expects. Opcodes absent from
// the table take no immediate.
func (op Opcode) Operand() OperandKind {
	if kind, ok := operandKinds[op]; ok {
		return kind
	}
	return NoOperand
}

var opcodeNames = map[Opcode]string{
	Halt: "HALT", Goto: "GOTO", Jmp: "JMP", Je: "JE", Jne: "JNE",
	Jgt: "JGT", Jlt: "JLT", Jget: "JGET", Jlet: "JLET",

	Band: "BAND", Bor: "BOR", Bxor: "BXOR", Bsl1: "BSL1", Bsr1: "BSR1", Bsl: "BSL", Bsr: "BSR",

	Add: "ADD", Sub: "SUB", Mul: "MUL", Div: "DIV", Mod: "MOD",

	LoadUchar: "LOAD_UCHAR", LoadUshort: "LOAD_USHORT", LoadUlong: "LOAD_ULONG", LoadUint: "LOAD_UINT",
	LoadChar: "LOAD_CHAR", LoadShort: "LOAD_SHORT", LoadLong: "LOAD_LONG", LoadInt: "LOAD_INT",
	LoadFloat: "LOAD_FLOAT", LoadDouble: "LOAD_DOUBLE", LoadAddr: "LOAD_ADDR",

	LoadStackOffsConst: "LOAD_STACK_OFFS_CONST", LoadValConst: "LOAD_VAL_CONST", LoadAddrConst: "LOAD_ADDR_CONST",

	StoreUchar: "STORE_UCHAR", StoreUshort: "STORE_USHORT", StoreUlong: "STORE_ULONG", StoreUint: "STORE_UINT",
	StoreChar: "STORE_CHAR", StoreShort: "STORE_SHORT", StoreLong: "STORE_LONG", StoreInt: "STORE_INT",
	StoreFloat: "STORE_FLOAT", StoreDouble: "STORE_DOUBLE", StoreAddr: "STORE_ADDR",

	Pushb: "PUSHB", Popb: "POPB", PushbConst: "PUSHB_CONST", PopbConst: "POPB_CONST",
}

// String renders the opcode the way debug traces print it (see
// VM.Trace), mirroring the original's OPCODE_NAMES table.
func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "UNKNOWN_OPCODE"
}
