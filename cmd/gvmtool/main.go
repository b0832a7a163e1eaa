// Command gvmtool is a demo driver over the sexpvm library: an external
// caller that builds an instruction stream, hands it to the assembler,
// then runs the resulting image, wired up as a cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gvmtool",
		Short: "Inspect and run sexpvm S-expressions and bytecode demos",
	}

	root.AddCommand(newPrintCmd())
	root.AddCommand(newRunCmd())

	return root
}
