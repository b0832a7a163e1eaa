package gvm

import "unsafe"

// DefaultProgramCapacity is the default fixed image size.
const DefaultProgramCapacity = 3000

// Program is an append-only byte buffer plus a monotonic write cursor:
// bytes before the cursor are the encoded program, bytes from the
// cursor onward are unspecified. Writes past capacity are not bounds
// checked.
type Program struct {
	buf    []byte
	cursor int
}

// NewProgram allocates a fixed-capacity image. capacity <= 0 uses the
// default of 3000 bytes.
func NewProgram(capacity int) *Program {
	if capacity <= 0 {
		capacity = DefaultProgramCapacity
	}
	return &Program{buf: make([]byte, capacity)}
}

// Cursor is the current write offset.
func (p *Program) Cursor() int { return p.cursor }

// Capacity is the fixed size of the underlying buffer.
func (p *Program) Capacity() int { return len(p.buf) }

// Bytes returns the encoded program written so far.
func (p *Program) Bytes() []byte { return p.buf[:p.cursor] }

// Base is the address of byte 0 of the image — the VM's initial
// instruction pointer.
func (p *Program) Base() Addr {
	return Addr(uintptr(unsafe.Pointer(&p.buf[0])))
}

// AddrAt returns the address of a given image offset. Used (through
// End) by the assembler to record label definitions.
func (p *Program) AddrAt(offset int) Addr {
	return p.Base() + Addr(offset)
}

// End is the address one past the last written byte — the address a
// label defined "here" resolves to.
func (p *Program) End() Addr {
	return p.AddrAt(p.cursor)
}

// WriteOp appends a single opcode byte.
func (p *Program) WriteOp(op Opcode) {
	p.buf[p.cursor] = byte(op)
	p.cursor++
}

// WriteValue appends an opcode followed by a native-endian Value
// immediate.
func (p *Program) WriteValue(op Opcode, v Value) {
	p.WriteOp(op)
	*(*Value)(unsafe.Pointer(&p.buf[p.cursor])) = v
	p.cursor += int(unsafe.Sizeof(v))
}

// WriteAddr appends an opcode followed by a Value-sized immediate whose
// bit pattern (via integer cast) is the address.
func (p *Program) WriteAddr(op Opcode, a Addr) {
	p.WriteValue(op, addrToValue(a))
}

// patchAddr overwrites an already-written Value-sized immediate at a
// byte offset, used by the assembler to resolve forward-referenced
// labels once their definitions are known.
func (p *Program) patchAddr(offset int, a Addr) {
	*(*Value)(unsafe.Pointer(&p.buf[offset])) = addrToValue(a)
}
