package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sexpvm/lexer"
	"sexpvm/parser"
)

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print [file]",
		Short: "Lex and parse an S-expression file, then re-print each top-level form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(cmd, args[0])
		},
	}
	return cmd
}

func runPrint(cmd *cobra.Command, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	tokens, err := lexer.Scan(string(src))
	if err != nil {
		return err
	}

	nodes, err := parser.Parse(tokens)
	if err != nil {
		return err
	}

	for _, node := range nodes {
		fmt.Fprintln(cmd.OutOrStdout(), parser.Print(node))
	}
	return nil
}
