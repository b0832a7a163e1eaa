package main

import (
	"fmt"
	"unsafe"

	"github.com/spf13/cobra"
	"sexpvm/gvm"
)

func addrOf[T any](v *T) gvm.Addr {
	return gvm.Addr(uintptr(unsafe.Pointer(v)))
}

func newRunCmd() *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "run [demo]",
		Short: "Assemble and run a bundled demo program (sum, loopsum)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, args[0], trace)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print one line per dispatched opcode")
	return cmd
}

func runDemo(cmd *cobra.Command, name string, trace bool) error {
	switch name {
	case "sum":
		return runSumDemo(cmd, trace)
	case "loopsum":
		return runLoopSumDemo(cmd, trace)
	default:
		return fmt.Errorf("unknown demo %q (want sum or loopsum)", name)
	}
}

// runSumDemo computes 2+3 and stores the result into a host int32:
// LOAD_VAL_CONST 2 ; LOAD_VAL_CONST 3 ; ADD ;
// LOAD_ADDR_CONST &out ; STORE_INT ; HALT.
func runSumDemo(cmd *cobra.Command, trace bool) error {
	var out int32

	prog := gvm.NewProgram(0)
	asm := gvm.NewAssembler(prog)
	stream := []gvm.Elem{
		gvm.Op(gvm.LoadValConst), gvm.Lit(2),
		gvm.Op(gvm.LoadValConst), gvm.Lit(3),
		gvm.Op(gvm.Add),
		gvm.Op(gvm.LoadAddrConst), gvm.AddrLit(addrOf(&out)),
		gvm.Op(gvm.StoreInt),
		gvm.Op(gvm.Halt),
	}
	if err := asm.Assemble(stream); err != nil {
		return err
	}

	vm := gvm.NewVM(prog, 0)
	if trace {
		vm.Trace = cmd.OutOrStdout()
	}
	if err := vm.Run(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "out = %d\n", out)
	return nil
}

// runLoopSumDemo sums 2+3+4+5 by walking four int slots on the byte
// stack with a labelled loop and JLT to exit.
func runLoopSumDemo(cmd *cobra.Command, trace bool) error {
	var res int32
	const slotBytes = 4

	prog := gvm.NewProgram(0)
	asm := gvm.NewAssembler(prog)
	stream := []gvm.Elem{
		gvm.Op(gvm.PushbConst), gvm.Lit(5 * slotBytes),

		gvm.Op(gvm.LoadValConst), gvm.Lit(2),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-5 * slotBytes),
		gvm.Op(gvm.StoreInt),
		gvm.Op(gvm.LoadValConst), gvm.Lit(3),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-4 * slotBytes),
		gvm.Op(gvm.StoreInt),
		gvm.Op(gvm.LoadValConst), gvm.Lit(4),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-3 * slotBytes),
		gvm.Op(gvm.StoreInt),
		gvm.Op(gvm.LoadValConst), gvm.Lit(5),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-2 * slotBytes),
		gvm.Op(gvm.StoreInt),

		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-5 * slotBytes),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-1 * slotBytes),
		gvm.Op(gvm.StoreAddr),

		gvm.Op(gvm.LoadValConst), gvm.Lit(0),
		gvm.Op(gvm.LoadAddrConst), gvm.AddrLit(addrOf(&res)),
		gvm.Op(gvm.StoreInt),

		gvm.Label("loop"),
		gvm.Op(gvm.LoadAddrConst), gvm.AddrLit(addrOf(&res)),
		gvm.Op(gvm.LoadInt),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-1 * slotBytes),
		gvm.Op(gvm.LoadAddr),
		gvm.Op(gvm.LoadInt),
		gvm.Op(gvm.Add),
		gvm.Op(gvm.LoadAddrConst), gvm.AddrLit(addrOf(&res)),
		gvm.Op(gvm.StoreInt),

		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-1 * slotBytes),
		gvm.Op(gvm.LoadAddr),
		gvm.Op(gvm.LoadValConst), gvm.Lit(slotBytes),
		gvm.Op(gvm.Add),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-1 * slotBytes),
		gvm.Op(gvm.StoreAddr),

		gvm.Op(gvm.LoadAddrConst), gvm.Label("loop"),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-1 * slotBytes),
		gvm.Op(gvm.LoadAddr),
		gvm.Op(gvm.LoadStackOffsConst), gvm.Lit(-1 * slotBytes),
		gvm.Op(gvm.Sub),
		gvm.Op(gvm.Jlt),

		gvm.Op(gvm.PopbConst), gvm.Lit(5 * slotBytes),
		gvm.Op(gvm.Halt),
	}
	if err := asm.Assemble(stream); err != nil {
		return err
	}

	vm := gvm.NewVM(prog, 0)
	if trace {
		vm.Trace = cmd.OutOrStdout()
	}
	if err := vm.Run(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "res = %d\n", res)
	return nil
}
