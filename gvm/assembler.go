package gvm

import (
	"fmt"

	"github.com/pkg/errors"
)

// ElemKind tags the payload carried by an Elem.
type ElemKind int

const (
	OpcodeElem ElemKind = iota
	ValueElem
	AddrElem
	LabelElem
)

// Elem is one tagged member of the symbolic instruction stream fed to
// the Assembler. A Label-token defines a label at the position it
// occupies in the stream, or is used as the operand of an
// address-immediate opcode — the same Elem value serves both roles,
// distinguished only by where it appears in the stream.
type Elem struct {
	Kind  ElemKind
	Op    Opcode
	Value Value
	Addr  Addr
	Label string
}

// Op wraps an Opcode element.
func Op(op Opcode) Elem { return Elem{Kind: OpcodeElem, Op: op} }

// Lit wraps a Value-literal element.
func Lit(v Value) Elem { return Elem{Kind: ValueElem, Value: v} }

// AddrLit wraps an Address-literal element.
func AddrLit(a Addr) Elem { return Elem{Kind: AddrElem, Addr: a} }

// Label wraps a Label-token element, either defining a label (when it
// appears on its own) or referencing one (when it appears as an
// address-immediate opcode's operand).
func Label(name string) Elem { return Elem{Kind: LabelElem, Label: name} }

// AssemblerError reports an operand-shape mismatch or an unresolved
// label.
type AssemblerError struct {
	Message string
}

func (e *AssemblerError) Error() string { return e.Message }

func assemblerErrorf(format string, args ...any) error {
	return errors.WithStack(&AssemblerError{Message: fmt.Sprintf(format, args...)})
}

// pendingFixup records an address-immediate instruction whose operand
// was a not-yet-defined label when it was processed. Patched once the
// whole stream has been scanned for definitions, so a label may be
// referenced before its own definition appears.
type pendingFixup struct {
	patchAt int
	label   string
}

// Assembler translates a symbolic instruction stream into a Program
// image: it records label positions, emits encoded instructions, and
// resolves label operands, including forward references.
type Assembler struct {
	prog    *Program
	labels  map[string]Addr
	pending []pendingFixup
}

// NewAssembler builds an Assembler writing into prog.
func NewAssembler(prog *Program) *Assembler {
	return &Assembler{prog: prog, labels: map[string]Addr{}}
}

// Labels exposes the resolved label map — used by tests to check
// label-resolution against the program cursor at definition time.
func (a *Assembler) Labels() map[string]Addr { return a.labels }

// Assemble processes stream strictly left to right, recording labels
// and emitting instructions, then patches any address operands that
// referenced a label before its definition was seen. A repeated label
// definition silently overwrites the earlier one.
func (a *Assembler) Assemble(stream []Elem) error {
	i := 0
	for i < len(stream) {
		elem := stream[i]

		if elem.Kind == LabelElem {
			a.labels[elem.Label] = a.prog.End()
			i++
			continue
		}

		if elem.Kind != OpcodeElem {
			return assemblerErrorf("expected an opcode, got element kind %d", elem.Kind)
		}

		op := elem.Op
		switch op.Operand() {
		case NoOperand:
			a.prog.WriteOp(op)
			i++

		case ValueOperand:
			i++
			if i >= len(stream) || stream[i].Kind != ValueElem {
				return assemblerErrorf("%s expects a value literal", op)
			}
			a.prog.WriteValue(op, stream[i].Value)
			i++

		case AddrOperand:
			i++
			if i >= len(stream) {
				return assemblerErrorf("%s expects an address literal or label", op)
			}
			operand := stream[i]
			switch operand.Kind {
			case AddrElem:
				a.prog.WriteAddr(op, operand.Addr)
			case LabelElem:
				patchAt := a.prog.Cursor() + 1
				a.prog.WriteAddr(op, Addr(0))
				if target, ok := a.labels[operand.Label]; ok {
					a.prog.patchAddr(patchAt, target)
				} else {
					a.pending = append(a.pending, pendingFixup{patchAt: patchAt, label: operand.Label})
				}
			default:
				return assemblerErrorf("%s expects an address literal or label", op)
			}
			i++
		}
	}

	for _, fix := range a.pending {
		target, ok := a.labels[fix.label]
		if !ok {
			return assemblerErrorf("unknown label %q", fix.label)
		}
		a.prog.patchAddr(fix.patchAt, target)
	}

	return nil
}
