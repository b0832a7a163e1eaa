// Package localctx assigns stack offsets to named local variables and
// emits the instruction pairs that load and store them against the
// VM's byte stack, built in the same style of emitting Elem-stream
// instructions one call at a time.
package localctx

import (
	"fmt"

	"github.com/pkg/errors"
	"sexpvm/gvm"
)

// PrimKind is one of the three primitive types a local variable may
// hold.
type PrimKind int

const (
	Int PrimKind = iota
	Float
	Double
)

func (k PrimKind) size() int64 {
	switch k {
	case Int:
		return 4
	case Float:
		return 4
	case Double:
		return 8
	default:
		return 0
	}
}

func (k PrimKind) loadOp() gvm.Opcode {
	switch k {
	case Int:
		return gvm.LoadInt
	case Float:
		return gvm.LoadFloat
	case Double:
		return gvm.LoadDouble
	default:
		return gvm.Halt
	}
}

func (k PrimKind) storeOp() gvm.Opcode {
	switch k {
	case Int:
		return gvm.StoreInt
	case Float:
		return gvm.StoreFloat
	case Double:
		return gvm.StoreDouble
	default:
		return gvm.Halt
	}
}

// Var is one named local: its primitive type and its offset from the
// current stack pointer (always <= 0).
type Var struct {
	Name   string
	Kind   PrimKind
	Offset int64
}

// CompilationError reports an unknown variable name, the same struct
// shape used by the parser.
type CompilationError struct {
	Message string
}

func (e *CompilationError) Error() string { return e.Message }

// Decl is one (name, type) pair in the ordered declaration list a
// Context is built from.
type Decl struct {
	Name string
	Kind PrimKind
}

// Context maps variable name to (type, offset). Constructed from an
// ordered list of (name, kind) pairs: offsets accumulate downward, so
// the i-th variable sits at offset -(sum of sizes of vars[0..i]).
type Context struct {
	vars      map[string]Var
	order     []string
	bytesUsed int64
}

// NewContext builds a Context from an ordered (name, kind) declaration
// list. offset(v0) = -size(v0), and offset(vi) - offset(vi+1) =
// size(vi+1).
func NewContext(decls []Decl) *Context {
	ctx := &Context{vars: map[string]Var{}}
	var running int64
	for _, d := range decls {
		running += d.Kind.size()
		v := Var{Name: d.Name, Kind: d.Kind, Offset: -running}
		ctx.vars[d.Name] = v
		ctx.order = append(ctx.order, d.Name)
	}
	ctx.bytesUsed = running
	return ctx
}

// BytesUsed is the total byte-stack frame size for every declared
// local.
func (c *Context) BytesUsed() int64 {
	return c.bytesUsed
}

// Lookup returns the Var for name, or a CompilationError if undeclared.
func (c *Context) Lookup(name string) (Var, error) {
	v, ok := c.vars[name]
	if !ok {
		return Var{}, errors.WithStack(&CompilationError{
			Message: fmt.Sprintf("undeclared local %q", name),
		})
	}
	return v, nil
}

// WriteStackAlloc emits PUSHB_CONST bytesUsed, reserving the frame.
func (c *Context) WriteStackAlloc(prog *gvm.Program) {
	prog.WriteValue(gvm.PushbConst, gvm.Value(c.bytesUsed))
}

// WriteStackFree emits POPB_CONST bytesUsed, releasing the frame.
func (c *Context) WriteStackFree(prog *gvm.Program) {
	prog.WriteValue(gvm.PopbConst, gvm.Value(c.bytesUsed))
}

// WriteLoad emits LOAD_STACK_OFFS_CONST off ; LOAD_<type> for name.
func (c *Context) WriteLoad(prog *gvm.Program, name string) error {
	v, err := c.Lookup(name)
	if err != nil {
		return err
	}
	prog.WriteValue(gvm.LoadStackOffsConst, gvm.Value(v.Offset))
	prog.WriteOp(v.Kind.loadOp())
	return nil
}

// WriteStore emits LOAD_STACK_OFFS_CONST off ; STORE_<type> for name.
func (c *Context) WriteStore(prog *gvm.Program, name string) error {
	v, err := c.Lookup(name)
	if err != nil {
		return err
	}
	prog.WriteValue(gvm.LoadStackOffsConst, gvm.Value(v.Offset))
	prog.WriteOp(v.Kind.storeOp())
	return nil
}
