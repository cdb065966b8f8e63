package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/aberro/barocpu/internal/cpu"
)

func newAssembleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assemble <file>",
		Short: "Compile a source file and print its disassembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(args[0])
			if err != nil {
				return errors.Wrapf(err, "reading %s", args[0])
			}
			prog, err := cpu.Compile(lines)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), prog.String())
			return nil
		},
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
